package client

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"code.dopame.me/veonik/squawk/config"
	"code.dopame.me/veonik/squawk/event"
	"code.dopame.me/veonik/squawk/plugin"
	"code.dopame.me/veonik/squawk/vm"
)

const pluginName = "client"

func pluginFromPlugins(m *plugin.Manager) (*clientPlugin, error) {
	p, err := m.Lookup(pluginName)
	if err != nil {
		return nil, err
	}
	mp, ok := p.(*clientPlugin)
	if !ok {
		return nil, errors.Errorf("%s: received unexpected plugin type", pluginName)
	}
	return mp, nil
}

func FromPlugins(m *plugin.Manager) (*Client, error) {
	mp, err := pluginFromPlugins(m)
	if err != nil {
		return nil, err
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.client == nil {
		return nil, errors.Errorf("%s: plugin is not configured", pluginName)
	}
	return mp.client, nil
}

func Initialize(m *plugin.Manager) (plugin.Plugin, error) {
	v, err := vm.FromPlugins(m)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: missing required dependency (vm)", pluginName)
	}
	ev, err := event.FromPlugins(m)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: missing required dependency (event)", pluginName)
	}
	return &clientPlugin{vm: v, events: ev}, nil
}

type clientPlugin struct {
	vm     *vm.VM
	events *event.Dispatcher

	client *Client
	// patchers registered before the plugin was configured.
	pending []TextPatcher
	mu      sync.Mutex
}

func (p *clientPlugin) Name() string {
	return pluginName
}

func (p *clientPlugin) Options() []config.SetupOption {
	return []config.SetupOption{
		config.WithInitValue(&Config{Splash: true}),
		config.WithOptions("splash", "event")}
}

func (p *clientPlugin) Configure(c config.Config) error {
	co, err := configFromGeneric(c)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = NewClient(co, p.vm, p.events)
	for _, tp := range p.pending {
		p.client.AddTextPatcher(tp)
	}
	p.pending = nil
	return nil
}

func configFromGeneric(g config.Config) (c *Config, err error) {
	if gcv, ok := g.Self().(*Config); ok {
		return gcv, nil
	}
	return c, errors.Errorf("%s: value is not a *client.Config", pluginName)
}

// HandlePluginInit registers any plugin that implements TextPatcher.
func (p *clientPlugin) HandlePluginInit(o plugin.Plugin) {
	tp, ok := o.(TextPatcher)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.AddTextPatcher(tp)
		return
	}
	p.pending = append(p.pending, tp)
}

func (p *clientPlugin) HandleRuntimeInit(r *goja.Runtime) {
	p.mu.Lock()
	cl := p.client
	p.mu.Unlock()
	if cl == nil {
		logrus.Warnln("client: plugin is not configured, skipping runtime init")
		return
	}
	cl.HandleRuntimeInit(r)
}
