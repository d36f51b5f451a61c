// Package event provides a simple asynchronous event dispatcher.
package event // import "code.dopame.me/veonik/squawk/event"

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type Event struct {
	Name string
	Data map[string]interface{}

	handled bool
}

// StopPropagation prevents any remaining handlers from running for this
// event.
func (e *Event) StopPropagation() {
	e.handled = true
}

type Handler interface {
	HandleEvent(ev *Event)
}

type HandlerFunc func(ev *Event)

func (f HandlerFunc) HandleEvent(ev *Event) {
	f(ev)
}

type Dispatcher struct {
	handlers map[string][]Handler

	emitting chan *Event
	stopped  bool

	mu sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return NewDispatcherLimit(8)
}

// NewDispatcherLimit creates a Dispatcher that buffers at most limit
// pending events. With a limit of 0, Emit blocks until the event is
// accepted by the running Loop.
func NewDispatcherLimit(limit int) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		emitting: make(chan *Event, limit),
	}
}

// Loop dispatches emitted events until the Dispatcher is stopped.
func (d *Dispatcher) Loop() {
	for ev := range d.emitting {
		d.mu.RLock()
		handlers := append([]Handler{}, d.handlers[ev.Name]...)
		d.mu.RUnlock()
		for _, h := range handlers {
			h.HandleEvent(ev)
			if ev.handled {
				break
			}
		}
	}
}

// Stop causes Loop to return once all pending events are dispatched.
// Events emitted after Stop are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	close(d.emitting)
}

func (d *Dispatcher) Bind(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

func (d *Dispatcher) Unbind(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	hs, ok := d.handlers[name]
	if !ok {
		return
	}
	// handlers are funcs and cannot be compared directly; their printed
	// representations can be.
	hi := fmt.Sprintf("%v", handler)
	for j, h := range hs {
		if hi == fmt.Sprintf("%v", h) {
			d.handlers[name] = append(hs[:j], hs[j+1:]...)
			return
		}
	}
	logrus.Debugln("event: not unbinding anything for", name, handler)
}

func (d *Dispatcher) Emit(name string, data map[string]interface{}) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		logrus.Debugln("event: dropping", name, "emitted after dispatcher stopped")
		return
	}
	d.emitting <- &Event{Name: name, Data: data}
}
