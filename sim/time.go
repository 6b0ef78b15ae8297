package sim

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VTimeInPs is an absolute point on the simulated timeline, in picoseconds.
type VTimeInPs uint64

// Duration is a span of simulated time in picoseconds. Unlike VTimeInPs it is
// signed so that configuration code can detect and reject negative values.
type Duration int64

// Common durations.
const (
	Picosecond  Duration = 1
	Nanosecond           = 1000 * Picosecond
	Microsecond          = 1000 * Nanosecond
	Millisecond          = 1000 * Microsecond
	Second               = 1000 * Millisecond
)

// Add returns the time t+d. The caller must make sure d is not negative.
func (t VTimeInPs) Add(d Duration) VTimeInPs {
	return t + VTimeInPs(d)
}

// Sub returns the duration t-u.
func (t VTimeInPs) Sub(u VTimeInPs) Duration {
	return Duration(t) - Duration(u)
}

// Seconds converts the time to floating point seconds.
func (t VTimeInPs) Seconds() float64 {
	return float64(t) / float64(Second)
}

func (t VTimeInPs) String() string {
	return Duration(t).String()
}

// Microseconds returns the duration as an integer microsecond count,
// truncating toward zero.
func (d Duration) Microseconds() int64 {
	return int64(d / Microsecond)
}

// Seconds converts the duration to floating point seconds.
func (d Duration) Seconds() float64 {
	return float64(d) / float64(Second)
}

func (d Duration) String() string {
	switch {
	case d == 0:
		return "0s"
	case d%Second == 0:
		return strconv.FormatInt(int64(d/Second), 10) + "s"
	case d%Millisecond == 0:
		return strconv.FormatInt(int64(d/Millisecond), 10) + "ms"
	case d%Microsecond == 0:
		return strconv.FormatInt(int64(d/Microsecond), 10) + "us"
	case d%Nanosecond == 0:
		return strconv.FormatInt(int64(d/Nanosecond), 10) + "ns"
	default:
		return strconv.FormatInt(int64(d), 10) + "ps"
	}
}

// ParseDuration parses strings such as "300ps", "1.5us", "2ms" or a bare
// integer, which is read as picoseconds.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("sim: empty duration")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(n), nil
	}

	if strings.HasSuffix(s, "ps") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "ps"), 64)
		if err != nil {
			return 0, fmt.Errorf("sim: invalid duration %q: %w", s, err)
		}

		return Duration(v), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("sim: invalid duration %q: %w", s, err)
	}

	return Duration(d.Nanoseconds()) * Nanosecond, nil
}
