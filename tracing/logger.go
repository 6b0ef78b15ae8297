package tracing

import (
	log "github.com/sirupsen/logrus"
)

// TransitLogger writes every transit into a logger at trace level.
type TransitLogger struct {
	logger log.FieldLogger
}

// NewTransitLogger creates a TransitLogger. A nil logger uses the standard
// logrus logger.
func NewTransitLogger(logger log.FieldLogger) *TransitLogger {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &TransitLogger{logger: logger}
}

// Arrive logs a packet entering a pipe.
func (l *TransitLogger) Arrive(rec TransitRecord) {
	l.entry(rec).Trace("arrive")
}

// Depart logs a packet leaving a pipe.
func (l *TransitLogger) Depart(rec TransitRecord) {
	l.entry(rec).Trace("depart")
}

func (l *TransitLogger) entry(rec TransitRecord) *log.Entry {
	return l.logger.WithFields(log.Fields{
		"pipe":    rec.Pipe,
		"packet":  rec.Packet,
		"bytes":   rec.Bytes,
		"arrival": uint64(rec.Arrival),
		"release": uint64(rec.Release),
	})
}
