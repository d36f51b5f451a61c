// Package plugin defines the squawk plugin container and lifecycle.
//
// Plugins are either linked into the main executable or built as shared
// objects and loaded at startup. Either way a plugin begins life as an
// Initializer; the Manager runs each Initializer exactly once and keeps
// the resulting Plugin for lookup by other plugins.
package plugin // import "code.dopame.me/veonik/squawk/plugin"

import (
	"fmt"
	"plugin"
	"sync"

	"github.com/pkg/errors"
)

type Plugin interface {
	Name() string
}

// An InitHandler is notified after each plugin finishes initializing.
type InitHandler interface {
	HandlePluginInit(Plugin)
}

// A ShutdownHandler is notified when the Manager is shutting down.
type ShutdownHandler interface {
	HandleShutdown()
}

type Initializer interface {
	Initialize(*Manager) (Plugin, error)
}

type InitializerFunc func(*Manager) (Plugin, error)

func (f InitializerFunc) Initialize(m *Manager) (Plugin, error) {
	return f(m)
}

// InitializeFromFile creates an Initializer that loads the shared object
// at the given path. The shared object must export a compatible
// Initialize function.
func InitializeFromFile(p string) Initializer {
	return InitializerFunc(func(m *Manager) (Plugin, error) {
		pl, err := plugin.Open(p)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open plugin (%s)", p)
		}
		in, err := pl.Lookup("Initialize")
		if err != nil {
			return nil, errors.Wrapf(err, "plugin does not export Initialize (%s)", p)
		}
		fn, ok := in.(func(*Manager) (Plugin, error))
		if !ok {
			return nil, errors.Errorf("plugin has invalid type for Initialize (%s): expected func(*plugin.Manager) (plugin.Plugin, error)", p)
		}
		plg, err := fn(m)
		if err != nil {
			return nil, errors.Wrapf(err, "plugin init failed (%s)", p)
		}
		return plg, nil
	})
}

// Main is the entry point for shared object plugin builds.
// A shared object plugin is not a standalone program; running one
// directly only prints a notice and exits.
func Main(pluginName string) {
	fmt.Printf("This is the %s squawk plugin. It is not meant to be run directly.\n", pluginName)
	fmt.Println("Load it with the -plugin flag instead.")
}

type Manager struct {
	pending []Initializer

	loaded map[string]Plugin
	order  []string

	onInit []InitHandler

	mu sync.RWMutex
}

func NewManager(plugins ...string) *Manager {
	pending := make([]Initializer, len(plugins))
	for i, n := range plugins {
		pending[i] = InitializeFromFile(n)
	}
	return &Manager{
		pending: pending,
		loaded:  make(map[string]Plugin),
	}
}

func (m *Manager) OnPluginInit(h InitHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onInit = append(m.onInit, h)
}

func (m *Manager) Lookup(name string) (Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if plg, ok := m.loaded[name]; ok {
		return plg, nil
	}
	return nil, errors.Errorf("no plugin named %s", name)
}

// Loaded returns the names of all loaded plugins in initialization order.
func (m *Manager) Loaded() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.order...)
}

func (m *Manager) Register(initfn Initializer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, initfn)
}

func (m *Manager) RegisterFunc(initfn func(m *Manager) (Plugin, error)) {
	m.Register(InitializerFunc(initfn))
}

// Configure initializes all pending plugins.
// Initialization continues past individual failures; every error
// encountered is returned.
func (m *Manager) Configure() []error {
	var errs []error
	m.mu.Lock()
	// take the pending initializers and reset the list on the Manager.
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	if len(pending) == 0 {
		return errs
	}
	for _, p := range pending {
		m.mu.RLock()
		// get a fresh copy of init handlers before each init;
		// plugins may add handlers in this loop and those should be
		// accounted for on subsequent inits.
		inits := append([]InitHandler{}, m.onInit...)
		m.mu.RUnlock()
		// the Manager must be unlocked while the plugin initializes; the
		// plugin is free to use the Manager itself during init.
		plg, err := p.Initialize(m)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "plugin init failed"))
			continue
		}
		pn := plg.Name()
		m.mu.Lock()
		_, dupe := m.loaded[pn]
		if !dupe {
			m.loaded[pn] = plg
			m.order = append(m.order, pn)
		}
		m.mu.Unlock()
		if dupe {
			errs = append(errs, errors.Errorf("plugin already loaded %s", pn))
			continue
		}
		for _, h := range inits {
			h.HandlePluginInit(plg)
		}
		if ih, ok := plg.(InitHandler); ok {
			// a plugin that is itself an InitHandler sees every other
			// plugin, including those initialized before it.
			m.OnPluginInit(ih)
			m.mu.RLock()
			prior := make([]Plugin, 0, len(m.order))
			for _, n := range m.order {
				prior = append(prior, m.loaded[n])
			}
			m.mu.RUnlock()
			for _, pp := range prior {
				ih.HandlePluginInit(pp)
			}
		}
	}
	return errs
}

// Shutdown notifies every loaded ShutdownHandler, in reverse
// initialization order.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	plgs := make([]Plugin, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		plgs = append(plgs, m.loaded[m.order[i]])
	}
	m.mu.RUnlock()
	for _, plg := range plgs {
		if sh, ok := plg.(ShutdownHandler); ok {
			sh.HandleShutdown()
		}
	}
}
