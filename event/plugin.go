package event

import (
	"code.dopame.me/veonik/squawk/plugin"

	"github.com/pkg/errors"
)

const pluginName = "event"

// FromPlugins returns the event plugin's Dispatcher or an error if it
// fails.
func FromPlugins(m *plugin.Manager) (*Dispatcher, error) {
	plg, err := m.Lookup(pluginName)
	if err != nil {
		return nil, err
	}
	mplg, ok := plg.(*eventPlugin)
	if !ok {
		return nil, errors.Errorf("%s: received unexpected plugin type", pluginName)
	}
	return mplg.dispatcher, nil
}

// Initialize is a plugin.Initializer that initializes an event plugin.
func Initialize(*plugin.Manager) (plugin.Plugin, error) {
	return &eventPlugin{NewDispatcher()}, nil
}

type eventPlugin struct {
	dispatcher *Dispatcher
}

func (p *eventPlugin) Name() string {
	return pluginName
}

func (p *eventPlugin) HandlePluginInit(o plugin.Plugin) {
	p.dispatcher.Emit("plugin.INIT", map[string]interface{}{"name": o.Name(), "plugin": o})
}

func (p *eventPlugin) HandleShutdown() {
	p.dispatcher.Stop()
}
