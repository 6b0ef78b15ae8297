package sim

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInPs
}

// EventScheduler accepts events to run later.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs once the engine has no events left.
type SimulationEndHandler interface {
	Handle(now VTimeInPs)
}

// Engine runs events in time order. Events with equal times run in the order
// they were scheduled.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run returns when the queue is empty or a handler fails.
	Run() error

	// Pause blocks Run before the next event until Continue is called.
	Pause()
	Continue()

	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls every registered SimulationEndHandler.
	Finished()
}
