// Package client implements the user-facing portion of squawk.
//
// The client renders its user interface with javascript running on the
// embedded vm. This package owns the loading splash shown while a
// connection attempt is in progress; other plugins may register a
// TextPatcher to replace the stock splash texts before one is chosen.
package client // import "code.dopame.me/veonik/squawk/client"

import (
	_ "embed"
	"sync"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"code.dopame.me/veonik/squawk/event"
	"code.dopame.me/veonik/squawk/vm"
)

//go:embed loading.js
var loadingScript string

type Config struct {
	// Splash controls whether a loading splash is rendered when a
	// connection attempt begins.
	Splash bool `toml:"splash"`
	// Event selects the seasonal-event splash texts instead of the
	// defaults.
	Event bool `toml:"event"`
}

// A SplashKind selects which set of loading texts the splash uses.
type SplashKind int

const (
	SplashDefault SplashKind = iota
	SplashEvent
)

func (k SplashKind) String() string {
	if k == SplashEvent {
		return "event"
	}
	return "default"
}

// A TextList is a mutable, ordered collection of splash texts owned by
// the client. Mutations apply to the client's live collection, not a
// copy.
type TextList interface {
	// Len returns the number of texts in the list.
	Len() int
	// Clear removes all texts from the list.
	Clear()
	// Append adds the given text to the end of the list.
	Append(text string)
}

// A TextPatcher modifies the splash texts before a splash is rendered.
//
// Implementations must not retain the TextList after returning and must
// not panic; a panicking patcher leaves the list in whatever state it
// reached.
type TextPatcher interface {
	PatchLoadingTexts(kind SplashKind, texts TextList)
}

type Client struct {
	config *Config
	vm     *vm.VM
	events *event.Dispatcher

	patchers []TextPatcher
	mu       sync.RWMutex
}

func NewClient(c *Config, v *vm.VM, ev *event.Dispatcher) *Client {
	cl := &Client{config: c, vm: v, events: ev}
	if c.Splash {
		ev.Bind("irc.CONNECTING", event.HandlerFunc(func(*event.Event) {
			kind := SplashDefault
			if c.Event {
				kind = SplashEvent
			}
			if _, err := cl.Splash(kind); err != nil {
				logrus.Warnln("client: error rendering splash:", err)
			}
		}))
	}
	return cl
}

// AddTextPatcher registers a patcher to run against the splash texts
// each time a splash is rendered. Patchers run in registration order.
func (cl *Client) AddTextPatcher(p TextPatcher) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.patchers = append(cl.patchers, p)
}

// HandleRuntimeInit installs the client's user interface scripts on a
// newly created runtime.
func (cl *Client) HandleRuntimeInit(r *goja.Runtime) {
	if _, err := r.RunScript("loading.js", loadingScript); err != nil {
		logrus.Warnln("client: error initializing loading screen:", err)
		return
	}
	obj := r.NewObject()
	if err := obj.Set("splash", func(call goja.FunctionCall) goja.Value {
		kind := SplashDefault
		if call.Argument(0).String() == SplashEvent.String() {
			kind = SplashEvent
		}
		text, err := cl.splash(r, kind)
		if err != nil {
			panic(r.NewGoError(err))
		}
		return r.ToValue(text)
	}); err != nil {
		logrus.Warnln("client: error initializing client api:", err)
		return
	}
	r.Set("client", obj)
}

// Splash patches the loading texts for the given kind and renders one
// chosen at random, returning the chosen text.
func (cl *Client) Splash(kind SplashKind) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	out := make(chan outcome, 1)
	cl.vm.Do(func(r *goja.Runtime) {
		text, err := cl.splash(r, kind)
		out <- outcome{text, err}
	})
	res := <-out
	return res.text, res.err
}

// splash does the actual patching and rendering. It must run on the
// vm's worker with exclusive access to the runtime.
func (cl *Client) splash(r *goja.Runtime, kind SplashKind) (string, error) {
	ls, err := loadingScreen(r)
	if err != nil {
		return "", err
	}
	key := "texts"
	if kind == SplashEvent {
		key = "eventTexts"
	}
	arr, ok := ls.Get(key).(*goja.Object)
	if !ok {
		return "", errors.Errorf("client: loadingScreen.%s is not an array", key)
	}
	texts := &gojaTextList{runtime: r, arr: arr}
	cl.mu.RLock()
	patchers := append([]TextPatcher{}, cl.patchers...)
	cl.mu.RUnlock()
	for _, p := range patchers {
		p.PatchLoadingTexts(kind, texts)
	}
	render, ok := goja.AssertFunction(ls.Get("render"))
	if !ok {
		return "", errors.New("client: loadingScreen.render is not a function")
	}
	v, err := render(ls, r.ToValue(kind.String()))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func loadingScreen(r *goja.Runtime) (*goja.Object, error) {
	v := r.Get("loadingScreen")
	if v == nil {
		return nil, errors.New("client: loading screen is not initialized")
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, errors.New("client: loadingScreen is not an object")
	}
	return obj, nil
}
