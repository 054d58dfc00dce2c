// Package hooking lets observers attach to the decision points of a model
// without the model knowing who listens.
package hooking

// A HookPos names one decision point. Positions are compared by pointer, so
// each one is declared once as a package-level variable.
type HookPos struct {
	Name string
}

func (p *HookPos) String() string {
	return p.Name
}

// HookCtx describes one invocation.
type HookCtx struct {
	// Domain is the object that fired the hook.
	Domain Hookable

	// Pos is where in Domain the hook fired.
	Pos *HookPos

	// Item is the object being worked on, for example an access.
	Item any

	// Detail carries what happened at Pos. Its type depends on Pos.
	Detail any
}

// Hookable is an object that hooks can be attached to.
type Hookable interface {
	Name() string
	AcceptHook(hook Hook)
	NumHooks() int
}

// A Hook is called every time its Hookable reaches a HookPos.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase keeps the hooks of a Hookable. Embed it and call InvokeHook.
type HookableBase struct {
	hooks []Hook
}

// NumHooks returns how many hooks are attached.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the attached hooks in the order they were attached.
func (h *HookableBase) Hooks() []Hook {
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)

	return hooks
}

// AcceptHook attaches a hook. Attaching the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, attached := range h.hooks {
		if attached == hook {
			panic("hook already attached")
		}
	}

	h.hooks = append(h.hooks, hook)
}

// InvokeHook calls every attached hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
