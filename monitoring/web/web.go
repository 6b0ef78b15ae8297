// Package web embeds the dashboard served by the pipesim monitor.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// DevModeEnv names the environment variable that makes the monitor serve the
// dashboard from the source tree instead of the embedded copy.
const DevModeEnv = "PIPESIM_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// Assets returns the dashboard files.
func Assets() http.FileSystem {
	if dir, ok := sourceDir(); ok {
		log.WithField("path", dir).Info("serving dashboard from disk")
		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func sourceDir() (string, bool) {
	dev, err := strconv.ParseBool(os.Getenv(DevModeEnv))
	if err != nil || !dev {
		return "", false
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the dashboard sources")
	}

	return filepath.Join(filepath.Dir(file), "dist"), true
}
