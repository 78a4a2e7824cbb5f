// Package dispatcher implements a single subscription on a well-known
// blackboard key whose callback forwards the key name into a bounded
// channel, read by a background goroutine that looks up the current value
// and spawns a handler.
//
// The subscription callback must never call back into the blackboard
// synchronously: doing so would re-enter the lock the Store's setters
// (SetString and the others) already hold while calling notifyLocked.
// Routing through this channel is what
// keeps that contract.
package dispatcher

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"plugboard.dev/plugboard/internal/blackboard"
	"plugboard.dev/plugboard/internal/logger"
)

// DefaultKey is the well-known blackboard key the runtime itself
// subscribes to.
const DefaultKey = "start_project"

const componentName = "event_dispatcher"

// channelHandle is the reference-counted handle the blackboard stores
// verbatim as the subscriber's user_data. It owns the channel the
// subscription callback forwards into.
type channelHandle struct {
	id   string
	ch   chan string
	refs int32
}

func newChannelHandle(bufSize int) *channelHandle {
	return &channelHandle{id: uuid.NewString(), ch: make(chan string, bufSize), refs: 1}
}

func (h *channelHandle) release() {
	if atomic.AddInt32(&h.refs, -1) == 0 {
		close(h.ch)
	}
}

// Dispatcher forwards notifications on DefaultKey to a handler function,
// invoked once per event with the key's current string value.
type Dispatcher struct {
	store   *blackboard.Store
	key     string
	handler func(value string)
	log     zerolog.Logger

	handle *channelHandle
	stop   chan struct{}
	wg     sync.WaitGroup
}

// New creates a Dispatcher that subscribes to key (DefaultKey if empty)
// on store and calls handler for every notification.
func New(store *blackboard.Store, key string, handler func(value string)) *Dispatcher {
	if key == "" {
		key = DefaultKey
	}
	return &Dispatcher{
		store:   store,
		key:     key,
		handler: handler,
		log:     logger.Component("dispatcher"),
	}
}

// Start registers the subscription and launches the background forwarding
// loop. The channel is bounded (size 64): when the forwarding loop falls
// behind, new events are dropped and logged rather than blocking the
// setter's thread, preserving the "every blackboard operation is
// synchronous and finite" contract.
func (d *Dispatcher) Start() error {
	d.handle = newChannelHandle(64)
	d.stop = make(chan struct{})

	cb := func(key string, userData interface{}) {
		h, ok := userData.(*channelHandle)
		if !ok {
			return
		}
		select {
		case h.ch <- key:
		default:
			d.log.Warn().Str("key", key).Msg("dispatcher channel full, dropping event")
		}
	}

	if err := d.store.Subscribe(d.key, componentName, cb, d.handle); err != nil {
		return err
	}

	d.wg.Add(1)
	go d.loop()
	return nil
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop:
			return
		case key, ok := <-d.handle.ch:
			if !ok {
				return
			}
			value, err := d.store.GetString(key)
			if err != nil {
				d.log.Error().Str("key", key).Err(err).Msg("failed to read notified key")
				continue
			}
			go d.handler(value)
		}
	}
}

// Stop unsubscribes, releases the channel handle, and waits for the
// forwarding loop to exit.
func (d *Dispatcher) Stop() {
	if d.handle == nil {
		return
	}
	_ = d.store.Unsubscribe(d.key, componentName)
	close(d.stop)
	d.wg.Wait()
	d.handle.release()
	d.handle = nil
}
