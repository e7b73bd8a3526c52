// message_bus.go - Named-channel message bus for Lumen86

/*
message_bus.go - Message Bus

This module implements the fan-out bus that connects the emulator core (the
producer) to the host-side adapters: screen, keyboard, mouse, network bridge,
loader and speaker. It is a minimal named-channel mechanism: listeners
register per channel name and every Send on that name invokes them in
registration order.

Dispatch is synchronous and in-order. A Send does not return until every
listener for the channel has returned, which is what gives the display
pipeline its single-threaded, callback-interleaved execution model: a
frame-fill request sent to the producer completes (including the producer's
answering fill-buffer-end message) before the renderer proceeds.

Registration after startup is supported but listeners are expected to be
wired once during bring-up; the lock exists for that window, not for
steady-state contention.
*/

package main

import "sync"

// BusListener receives the arguments passed to Send.
type BusListener func(args []any)

type MessageBus struct {
	mutex     sync.RWMutex
	listeners map[string][]BusListener
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		listeners: make(map[string][]BusListener),
	}
}

// Register adds a listener for a channel name. Multiple listeners on one
// name are all invoked, in registration order.
func (bus *MessageBus) Register(name string, fn BusListener) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	bus.listeners[name] = append(bus.listeners[name], fn)
}

// Send delivers args to every listener registered for name, synchronously.
// Sends to a name with no listeners are silently dropped.
func (bus *MessageBus) Send(name string, args ...any) {
	bus.mutex.RLock()
	fns := bus.listeners[name]
	bus.mutex.RUnlock()

	for _, fn := range fns {
		fn(args)
	}
}

// HasListener reports whether any listener is registered for name. Used by
// adapters that want to skip building a payload nobody consumes.
func (bus *MessageBus) HasListener(name string) bool {
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()
	return len(bus.listeners[name]) > 0
}

// Arg helpers. Bus payloads are loosely typed; senders use plain Go values
// and listeners normalise with these. A missing or mistyped argument decays
// to the zero value - adapters treat malformed traffic as recoverable.

func argInt(args []any, i int) int {
	if i >= len(args) {
		return 0
	}
	switch v := args[i].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint8:
		return int(v)
	case uint32:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func argBool(args []any, i int) bool {
	if i >= len(args) {
		return false
	}
	v, ok := args[i].(bool)
	return ok && v
}

func argBytes(args []any, i int) []byte {
	if i >= len(args) {
		return nil
	}
	v, _ := args[i].([]byte)
	return v
}
