package script

import (
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"code.dopame.me/veonik/squawk/config"
	"code.dopame.me/veonik/squawk/plugin"
	"code.dopame.me/veonik/squawk/vm"
)

const PluginName = "script"

// Initialize is a valid plugin.Initializer
func Initialize(m *plugin.Manager) (plugin.Plugin, error) {
	vp, err := vm.FromPlugins(m)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: missing required dependency (vm)", PluginName)
	}
	return &scriptPlugin{vm: vp}, nil
}

func FromPlugins(m *plugin.Manager) (*Manager, error) {
	mp, err := pluginFromPlugins(m)
	if err != nil {
		return nil, err
	}
	if mp.manager == nil {
		return nil, errors.Errorf("%s: plugin is not configured", PluginName)
	}
	return mp.manager, nil
}

func pluginFromPlugins(m *plugin.Manager) (*scriptPlugin, error) {
	p, err := m.Lookup(PluginName)
	if err != nil {
		return nil, err
	}
	mp, ok := p.(*scriptPlugin)
	if !ok {
		return nil, errors.Errorf("%s: received unexpected plugin type", PluginName)
	}
	return mp, nil
}

type scriptPlugin struct {
	vm      *vm.VM
	manager *Manager
}

func (p *scriptPlugin) HandleRuntimeInit(r *goja.Runtime) {
	if p.manager == nil {
		return
	}
	logrus.Infoln("loading scripts from", p.manager.rootDir)
	ss, err := p.manager.LoadAll()
	if err != nil {
		logrus.Warnf("%s: failed to list directory contents of %s: %s", PluginName, p.manager.rootDir, err)
		return
	}
	for _, s := range ss {
		logrus.Infoln("running script", s.Name)
		pr, err := p.vm.Compile(s.Name, s.Body)
		if err != nil {
			logrus.Warnf("%s: failed to compile script (%s): %s", PluginName, s.Name, err)
			continue
		}
		if _, err = r.RunProgram(pr); err != nil {
			logrus.Warnf("%s: error while running script (%s): %s", PluginName, s.Name, err)
		}
	}
}

func (p *scriptPlugin) Options() []config.SetupOption {
	return []config.SetupOption{
		config.WithOption("scripts_path"),
		config.WithInheritedOption("root_path")}
}

func (p *scriptPlugin) Configure(conf config.Config) error {
	r, ok := conf.String("scripts_path")
	if !ok || r == "" {
		r = "scripts"
	}
	if !filepath.IsAbs(r) {
		if rr, ok := conf.String("root_path"); ok {
			r = filepath.Join(rr, r)
		}
	}
	p.manager = NewManager(r)
	return nil
}

func (p *scriptPlugin) Name() string {
	return PluginName
}
