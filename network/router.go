package network

import (
	"sync"
)

// HandlerFunc consumes one inbound envelope.
type HandlerFunc func(env *Envelope)

// Router dispatches inbound frames by their type tag. At most one handler per
// type: registering again for the same type replaces the previous handler
// (last writer wins). A frame with no handler is dropped, not an error; the
// drop is reported through the OnDrop hook so it stays observable.
type Router struct {
	mutex    sync.RWMutex
	handlers map[string]HandlerFunc

	// OnDrop, when set, is invoked with the type of every frame that had no
	// registered handler.
	OnDrop func(msgType string)
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register installs handler for msgType and returns a func that removes it.
// The returned func only removes the handler it installed; if another
// registration replaced it in the meantime, it is a no-op.
func (r *Router) Register(msgType string, handler HandlerFunc) func() {
	r.mutex.Lock()
	r.handlers[msgType] = handler
	r.mutex.Unlock()

	return func() {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		// Func values are not comparable; removing by type is the contract
		// since only one handler per type can exist.
		delete(r.handlers, msgType)
	}
}

// Dispatch routes env to its handler. Returns false when no handler was
// registered for the type.
func (r *Router) Dispatch(env *Envelope) bool {
	r.mutex.RLock()
	handler, ok := r.handlers[env.Type]
	r.mutex.RUnlock()

	if !ok {
		if r.OnDrop != nil {
			r.OnDrop(env.Type)
		}
		return false
	}
	handler(env)
	return true
}

// UnregisterAll removes every handler. Called on connection teardown.
func (r *Router) UnregisterAll() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	clear(r.handlers)
}
