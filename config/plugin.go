package config

import (
	"code.dopame.me/veonik/squawk/plugin"

	"github.com/pkg/errors"
)

const pluginName = "config"

func pluginFromPlugins(m *plugin.Manager) (*configPlugin, error) {
	p, err := m.Lookup(pluginName)
	if err != nil {
		return nil, err
	}
	mp, ok := p.(*configPlugin)
	if !ok {
		return nil, errors.Errorf("%s: received unexpected plugin type", pluginName)
	}
	return mp, nil
}

// ConfigurePlugin applies the given options to the root configuration.
func ConfigurePlugin(m *plugin.Manager, opts ...SetupOption) error {
	mp, err := pluginFromPlugins(m)
	if err != nil {
		return err
	}
	return mp.Configure(opts...)
}

// Initialize is a plugin.Initializer that initializes a config plugin.
func Initialize(m *plugin.Manager) (plugin.Plugin, error) {
	return &configPlugin{}, nil
}

type configPlugin struct {
	baseOptions []SetupOption
	current     Config
}

// A configurablePlugin is a plugin that can be configured using this
// package.
type configurablePlugin interface {
	plugin.Plugin

	Options() []SetupOption
	Configure(config Config) error
}

func (p *configPlugin) HandlePluginInit(op plugin.Plugin) {
	cp, ok := op.(configurablePlugin)
	if !ok {
		return
	}
	// a plugin that cannot be configured cannot be used; configuration
	// errors at startup are fatal.
	err := p.Configure(WithGenericSection(cp.Name(), cp.Options()...))
	if err != nil {
		panic(err)
	}
	v, err := p.current.Section(cp.Name())
	if err != nil {
		panic(err)
	}
	if err = cp.Configure(v); err != nil {
		panic(err)
	}
}

func (p *configPlugin) Name() string {
	return pluginName
}

func (p *configPlugin) Configure(opts ...SetupOption) error {
	p.baseOptions = append(p.baseOptions, opts...)
	nc, err := Wrap(p.current, p.baseOptions...)
	if err != nil {
		return err
	}
	p.current = nc
	return nil
}
