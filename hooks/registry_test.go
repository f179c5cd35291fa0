package hooks

import (
	"errors"
	"testing"
)

func TestRegistryLoad(t *testing.T) {
	broker := NewPluginBroker()
	reg := NewRegistry(broker)

	metricsDesc := PluginDescriptor{
		Name:     "playback-metrics",
		Category: PluginCategoryInstrumentation,
	}
	if err := reg.Register("playback-metrics", metricsDesc, func(b *PluginBroker) error {
		b.RegisterBundle(metricsDesc, HookBundle{
			Rotate: []RotateHook{
				func(ctx *RotateContext) error { return nil },
			},
		})
		return nil
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	viewerDesc := PluginDescriptor{
		Name:     "visualization/web",
		Category: PluginCategoryVisualization,
	}
	loaded := false
	if err := reg.Register("visualization/web", viewerDesc, func(b *PluginBroker) error {
		loaded = true
		return nil
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := reg.Load("playback-metrics", "visualization/web"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded {
		t.Fatalf("expected viewer factory to run")
	}

	descs := broker.ListAllPlugins()
	if len(descs) != 2 {
		t.Fatalf("expected 2 plugin descriptors, got %d", len(descs))
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "playback-metrics" {
		t.Fatalf("unexpected registry names %v", names)
	}
	if got := reg.Loaded(); len(got) != 2 || got[1] != "visualization/web" {
		t.Fatalf("unexpected load order %v", got)
	}
}

func TestRegistryLoadIsIdempotent(t *testing.T) {
	broker := NewPluginBroker()
	reg := NewRegistry(broker)
	installs := 0
	desc := PluginDescriptor{Name: "visualization/gui", Category: PluginCategoryVisualization}
	if err := reg.Register(desc.Name, desc, func(b *PluginBroker) error {
		installs++
		b.RegisterRepaint(func(*RepaintContext) error { return nil })
		return nil
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := reg.Load(desc.Name); err != nil {
			t.Fatalf("Load #%d failed: %v", i, err)
		}
	}
	if installs != 1 {
		t.Fatalf("expected one install, got %d", installs)
	}
	if got := reg.Loaded(); len(got) != 1 {
		t.Fatalf("expected one loaded plugin, got %v", got)
	}
}

func TestRegistryFailedLoadCanBeRetried(t *testing.T) {
	reg := NewRegistry(nil)
	attempts := 0
	boom := errors.New("display unavailable")
	if err := reg.Register("visualization/gui", PluginDescriptor{}, func(*PluginBroker) error {
		attempts++
		if attempts == 1 {
			return boom
		}
		return nil
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Load("visualization/gui"); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if len(reg.Loaded()) != 0 {
		t.Fatalf("failed plugin marked loaded: %v", reg.Loaded())
	}
	if err := reg.Load("visualization/gui"); err != nil || attempts != 2 {
		t.Fatalf("retry failed: err=%v attempts=%d", err, attempts)
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	reg := NewRegistry(NewPluginBroker())

	desc := PluginDescriptor{Name: "dup", Category: PluginCategoryProducer}
	err := reg.Register("dup", desc, func(b *PluginBroker) error { return nil })
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err = reg.Register("dup", desc, func(b *PluginBroker) error { return nil })
	if !errors.Is(err, ErrPluginExists) {
		t.Fatalf("expected duplicate registration to fail, got %v", err)
	}
	if got, ok := reg.Descriptor("dup"); !ok || got.Category != PluginCategoryProducer {
		t.Fatalf("unexpected descriptor %+v ok=%v", got, ok)
	}
}

func TestRegistryUnknownPlugin(t *testing.T) {
	reg := NewRegistry(NewPluginBroker())

	if err := reg.Load("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
