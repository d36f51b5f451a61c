package client_test

import (
	"testing"
	"time"

	"code.dopame.me/veonik/squawk/client"
	"code.dopame.me/veonik/squawk/event"
	"code.dopame.me/veonik/squawk/vm"
)

type replacePatcher struct {
	texts []string
	kinds []client.SplashKind
}

func (p *replacePatcher) PatchLoadingTexts(kind client.SplashKind, texts client.TextList) {
	p.kinds = append(p.kinds, kind)
	texts.Clear()
	for _, t := range p.texts {
		texts.Append(t)
	}
}

func newTestClient(t *testing.T, c *client.Config) (*client.Client, *vm.VM) {
	t.Helper()
	d := event.NewDispatcher()
	go d.Loop()
	t.Cleanup(d.Stop)
	v := vm.New()
	cl := client.NewClient(c, v, d)
	v.OnRuntimeInit(cl.HandleRuntimeInit)
	if err := v.Start(); err != nil {
		t.Fatalf("unexpected error starting vm: %s", err)
	}
	t.Cleanup(func() {
		_ = v.Shutdown()
	})
	return cl, v
}

func TestClient_Splash_patchesBeforeRendering(t *testing.T) {
	cl, _ := newTestClient(t, &client.Config{})
	p := &replacePatcher{texts: []string{"only choice"}}
	cl.AddTextPatcher(p)
	text, err := cl.Splash(client.SplashDefault)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if text != "only choice" {
		t.Errorf("expected %q, got %q", "only choice", text)
	}
	if len(p.kinds) != 1 || p.kinds[0] != client.SplashDefault {
		t.Errorf("expected patcher to run once for the default kind, got %v", p.kinds)
	}
}

func TestClient_Splash_eventKind(t *testing.T) {
	cl, _ := newTestClient(t, &client.Config{})
	p := &replacePatcher{texts: []string{"seasonal"}}
	cl.AddTextPatcher(p)
	text, err := cl.Splash(client.SplashEvent)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if text != "seasonal" {
		t.Errorf("expected %q, got %q", "seasonal", text)
	}
	if len(p.kinds) != 1 || p.kinds[0] != client.SplashEvent {
		t.Errorf("expected patcher to run once for the event kind, got %v", p.kinds)
	}
}

func TestClient_Splash_mutatesLiveArray(t *testing.T) {
	cl, v := newTestClient(t, &client.Config{})
	// take a reference to the array before patching; the splash must
	// mutate the same object, not swap in a replacement.
	if _, err := v.RunString(`var before = loadingScreen.texts;`).Await(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cl.AddTextPatcher(&replacePatcher{texts: []string{"patched"}})
	if _, err := cl.Splash(client.SplashDefault); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	res, err := v.RunString(`before === loadingScreen.texts && before.length === 1 && before[0] === "patched"`).Await()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !res.ToBoolean() {
		t.Error("expected the original array to be patched in place")
	}
}

func TestClient_Splash_emptyPoolRendersNothing(t *testing.T) {
	cl, _ := newTestClient(t, &client.Config{})
	cl.AddTextPatcher(&replacePatcher{})
	text, err := cl.Splash(client.SplashDefault)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if text != "" {
		t.Errorf("expected empty splash, got %q", text)
	}
}

func TestClient_Splash_onConnecting(t *testing.T) {
	d := event.NewDispatcher()
	go d.Loop()
	defer d.Stop()
	v := vm.New()
	cl := client.NewClient(&client.Config{Splash: true}, v, d)
	v.OnRuntimeInit(cl.HandleRuntimeInit)
	if err := v.Start(); err != nil {
		t.Fatalf("unexpected error starting vm: %s", err)
	}
	defer v.Shutdown()
	patched := make(chan struct{}, 1)
	cl.AddTextPatcher(patcherFunc(func(kind client.SplashKind, texts client.TextList) {
		patched <- struct{}{}
	}))
	d.Emit("irc.CONNECTING", nil)
	select {
	case <-patched:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for splash to render")
	}
}

type patcherFunc func(client.SplashKind, client.TextList)

func (f patcherFunc) PatchLoadingTexts(kind client.SplashKind, texts client.TextList) {
	f(kind, texts)
}
