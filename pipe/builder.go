package pipe

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// DefaultInitialCapacity is the number of in-flight slots a new pipe starts
// with.
const DefaultInitialCapacity = 16

// Configuration errors returned by Build.
var (
	ErrNoEngine      = errors.New("pipe: engine is required")
	ErrNegativeDelay = errors.New("pipe: delay must not be negative")
	ErrBadCapacity   = errors.New(
		"pipe: initial capacity must be a positive power of two")
)

// Builder can build pipes.
type Builder struct {
	engine     Scheduler
	delay      sim.Duration
	capacity   int
	ledger     LinkRecorder
	classifier network.Classifier
	strict     bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		capacity:   DefaultInitialCapacity,
		classifier: network.DefaultClassifier(),
	}
}

// WithEngine sets the engine that the pipe schedules its release events on.
func (b Builder) WithEngine(engine Scheduler) Builder {
	b.engine = engine
	return b
}

// WithDelay sets the propagation delay.
func (b Builder) WithDelay(delay sim.Duration) Builder {
	b.delay = delay
	return b
}

// WithInitialCapacity sets the initial number of in-flight slots.
func (b Builder) WithInitialCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithLedger sets where the pipe accounts the bytes it releases.
func (b Builder) WithLedger(ledger LinkRecorder) Builder {
	b.ledger = ledger
	return b
}

// WithClassifier sets the rule that decides whether the bound node is
// accounted.
func (b Builder) WithClassifier(classifier network.Classifier) Builder {
	b.classifier = classifier
	return b
}

// WithStrictChecks makes the pipe panic on scheduling invariant violations
// instead of logging them.
func (b Builder) WithStrictChecks() Builder {
	b.strict = true
	return b
}

// Build creates a pipe. An empty name gives the pipe a name derived from its
// delay, such as "pipe(10us)".
func (b Builder) Build(name string) (*Comp, error) {
	if b.engine == nil {
		return nil, ErrNoEngine
	}

	if b.delay < 0 {
		return nil, fmt.Errorf("%w: got %s", ErrNegativeDelay, b.delay)
	}

	if b.capacity <= 0 || b.capacity&(b.capacity-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadCapacity, b.capacity)
	}

	if name == "" {
		name = DefaultName(b.delay)
	}

	classifier := b.classifier
	if classifier == nil {
		classifier = network.DefaultClassifier()
	}

	c := &Comp{
		name:       name,
		engine:     b.engine,
		delay:      b.delay,
		queue:      newDelayQueue(b.capacity),
		ledger:     b.ledger,
		classifier: classifier,
		strict:     b.strict,
	}
	c.release.pipe = c

	return c, nil
}

// DefaultName returns the name given to a pipe with the given delay when no
// name is specified.
func DefaultName(delay sim.Duration) string {
	return fmt.Sprintf("pipe(%dus)", delay.Microseconds())
}
