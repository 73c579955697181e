package network

import (
	"testing"
)

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter()
	called := false
	r.Register("chat", func(env *Envelope) { called = true })

	env, _ := ParseEnvelope([]byte(`{"type":"chat"}`))
	if !r.Dispatch(env) {
		t.Fatal("Dispatch should report a handled frame")
	}
	if !called {
		t.Error("Registered handler was not invoked")
	}
}

func TestRouter_LastWriterWins(t *testing.T) {
	r := NewRouter()
	first, second := false, false
	r.Register("chat", func(env *Envelope) { first = true })
	r.Register("chat", func(env *Envelope) { second = true })

	env, _ := ParseEnvelope([]byte(`{"type":"chat"}`))
	r.Dispatch(env)

	if first {
		t.Error("Replaced handler must not be invoked")
	}
	if !second {
		t.Error("Replacing handler must be invoked")
	}
}

func TestRouter_UnhandledFrameIsDroppedObservably(t *testing.T) {
	r := NewRouter()
	var dropped string
	r.OnDrop = func(msgType string) { dropped = msgType }

	env, _ := ParseEnvelope([]byte(`{"type":"mystery"}`))
	if r.Dispatch(env) {
		t.Error("Dispatch should report an unhandled frame")
	}
	if dropped != "mystery" {
		t.Errorf("Expected the drop hook to see the type, got %q", dropped)
	}
}

func TestRouter_Unsubscribe(t *testing.T) {
	r := NewRouter()
	called := false
	unsubscribe := r.Register("chat", func(env *Envelope) { called = true })
	unsubscribe()

	env, _ := ParseEnvelope([]byte(`{"type":"chat"}`))
	if r.Dispatch(env) {
		t.Error("Dispatch should not find an unsubscribed handler")
	}
	if called {
		t.Error("Unsubscribed handler must not be invoked")
	}
}

func TestRouter_UnregisterAll(t *testing.T) {
	r := NewRouter()
	r.Register("chat", func(env *Envelope) {})
	r.Register("ready", func(env *Envelope) {})
	r.UnregisterAll()

	env, _ := ParseEnvelope([]byte(`{"type":"chat"}`))
	if r.Dispatch(env) {
		t.Error("UnregisterAll should remove every handler")
	}
}
