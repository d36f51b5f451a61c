package vm

import (
	"code.dopame.me/veonik/squawk/plugin"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const pluginName = "vm"

func pluginFromPlugins(m *plugin.Manager) (*vmPlugin, error) {
	p, err := m.Lookup(pluginName)
	if err != nil {
		return nil, err
	}
	mp, ok := p.(*vmPlugin)
	if !ok {
		return nil, errors.Errorf("%s: received unexpected plugin type", pluginName)
	}
	return mp, nil
}

// FromPlugins returns the vm plugin's VM or an error if it fails.
func FromPlugins(m *plugin.Manager) (*VM, error) {
	mp, err := pluginFromPlugins(m)
	if err != nil {
		return nil, err
	}
	return mp.vm, nil
}

// Initialize is a plugin.Initializer that initializes a vm plugin.
func Initialize(*plugin.Manager) (plugin.Plugin, error) {
	return &vmPlugin{vm: New()}, nil
}

type vmPlugin struct {
	vm *VM
}

func (p *vmPlugin) Name() string {
	return pluginName
}

// A RuntimeInitHandler initializes a newly created goja.Runtime.
type RuntimeInitHandler interface {
	// Initialize and configure the given runtime.
	HandleRuntimeInit(r *goja.Runtime)
}

// A PrependRuntimeInitHandler is a RuntimeInitHandler that may be added
// at the start of the list of handlers.
type PrependRuntimeInitHandler interface {
	RuntimeInitHandler
	// PrependRuntimeInitHandler returns true if the handler should be
	// added to the start of the list of handlers.
	PrependRuntimeInitHandler() bool
}

func (p *vmPlugin) HandlePluginInit(o plugin.Plugin) {
	ih, ok := o.(RuntimeInitHandler)
	if !ok {
		return
	}
	if oh, ok := ih.(PrependRuntimeInitHandler); ok && oh.PrependRuntimeInitHandler() {
		p.vm.PrependRuntimeInit(ih.HandleRuntimeInit)
	} else {
		p.vm.OnRuntimeInit(ih.HandleRuntimeInit)
	}
}

func (p *vmPlugin) HandleShutdown() {
	if err := p.vm.Shutdown(); err != nil {
		logrus.Warnln("vm: error shutting down:", err)
	}
}
