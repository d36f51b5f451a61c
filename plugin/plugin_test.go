package plugin_test

import (
	"testing"

	"code.dopame.me/veonik/squawk/plugin"
)

type fakePlugin struct {
	name string

	shutdowns *[]string
}

func (p *fakePlugin) Name() string {
	return p.name
}

func (p *fakePlugin) HandleShutdown() {
	if p.shutdowns != nil {
		*p.shutdowns = append(*p.shutdowns, p.name)
	}
}

type initRecorder struct {
	inited []string
}

func (h *initRecorder) HandlePluginInit(p plugin.Plugin) {
	h.inited = append(h.inited, p.Name())
}

func TestManager_Configure(t *testing.T) {
	m := plugin.NewManager()
	h := &initRecorder{}
	m.OnPluginInit(h)
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "first"}, nil
	})
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "second"}, nil
	})
	if errs := m.Configure(); len(errs) > 0 {
		t.Errorf("expected no errors, got: %s", errs[0])
		return
	}
	if _, err := m.Lookup("first"); err != nil {
		t.Errorf("expected to find plugin 'first': %s", err)
		return
	}
	if _, err := m.Lookup("missing"); err == nil {
		t.Errorf("expected error looking up missing plugin, got nil")
		return
	}
	if len(h.inited) != 2 || h.inited[0] != "first" || h.inited[1] != "second" {
		t.Errorf("expected init handler to see [first second], got %v", h.inited)
	}
}

type handlerPlugin struct {
	fakePlugin
	initRecorder
}

func TestManager_Configure_pluginAsInitHandler(t *testing.T) {
	m := plugin.NewManager()
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "early"}, nil
	})
	h := &handlerPlugin{fakePlugin: fakePlugin{name: "handler"}}
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return h, nil
	})
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "late"}, nil
	})
	if errs := m.Configure(); len(errs) > 0 {
		t.Errorf("expected no errors, got: %s", errs[0])
		return
	}
	// the handler sees plugins initialized before it as well as after
	expected := []string{"early", "handler", "late"}
	if len(h.inited) != len(expected) {
		t.Fatalf("expected init handler to see %v, got %v", expected, h.inited)
	}
	for i, n := range expected {
		if h.inited[i] != n {
			t.Fatalf("expected init handler to see %v, got %v", expected, h.inited)
		}
	}
}

func TestManager_Configure_duplicate(t *testing.T) {
	m := plugin.NewManager()
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "dupe"}, nil
	})
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "dupe"}, nil
	})
	errs := m.Configure()
	if len(errs) != 1 {
		t.Errorf("expected exactly one error, got %d", len(errs))
		return
	}
	if errs[0] == nil || errs[0].Error() != "plugin already loaded dupe" {
		t.Errorf("unexpected error: %v", errs[0])
	}
}

func TestManager_Shutdown_reverseOrder(t *testing.T) {
	var downed []string
	m := plugin.NewManager()
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "first", shutdowns: &downed}, nil
	})
	m.RegisterFunc(func(*plugin.Manager) (plugin.Plugin, error) {
		return &fakePlugin{name: "second", shutdowns: &downed}, nil
	})
	if errs := m.Configure(); len(errs) > 0 {
		t.Errorf("expected no errors, got: %s", errs[0])
		return
	}
	m.Shutdown()
	if len(downed) != 2 || downed[0] != "second" || downed[1] != "first" {
		t.Errorf("expected shutdown order [second first], got %v", downed)
	}
}
