package sim

// HookPos names a point in the code where hooks run.
type HookPos struct {
	Name string
}

// HookCtx is passed to every hook. Item is the object the position is about,
// such as the event or the packet, and Detail carries position-specific data.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is implemented by anything hooks can attach to.
type Hookable interface {
	AcceptHook(hook Hook)
}

// Engine hook positions. After an event the Detail is the error returned by
// the handler. Handlers may reschedule their event, so hooks that need the
// time of the event that ran should ask the engine instead of the event.
var (
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &HookPos{Name: "AfterEvent"}
)

// Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc lets a plain function serve as a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase keeps a list of hooks. Embed it to make a type Hookable.
type HookableBase struct {
	Hooks []Hook
}

// NumHooks returns how many hooks are attached. Callers check it to skip
// building a HookCtx nobody will see.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// AcceptHook attaches a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook runs the hooks in the order they were attached.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
