package hooks

import (
	"sync"
	"time"

	"github.com/example/netsim_playback/core"
)

// PluginCategory represents the high-level role of a plugin.
type PluginCategory string

const (
	// PluginCategoryVisualization covers viewers that present rendered frames.
	PluginCategoryVisualization PluginCategory = "visualization"
	// PluginCategoryInstrumentation covers metrics, tracing, and diagnostics.
	PluginCategoryInstrumentation PluginCategory = "instrumentation"
	// PluginCategoryProducer covers event sources that feed the engine.
	PluginCategoryProducer PluginCategory = "producer"
)

// PluginDescriptor describes a plugin registered with the broker.
type PluginDescriptor struct {
	Name        string
	Category    PluginCategory
	Description string
}

// HookBundle groups multiple hook handlers that belong to one plugin.
type HookBundle struct {
	Rotate        []RotateHook
	Repaint       []RepaintHook
	Reset         []ResetHook
	RenderFault   []RenderFaultHook
	FrameRendered []FrameRenderedHook
}

// RotateContext describes a display rotation: the frame that was just built
// from the incoming bucket and the tick that opened the next bucket.
type RotateContext struct {
	Frame    core.Frame
	NextTick int64
}

// RepaintReason tells listeners why a repaint was requested.
type RepaintReason string

const (
	RepaintRotation RepaintReason = "rotation"
	RepaintReset    RepaintReason = "reset"
	RepaintControl  RepaintReason = "control"
)

// RepaintContext carries a repaint request for the displayed tick.
type RepaintContext struct {
	Tick   int64
	Reason RepaintReason
}

// ResetContext is emitted after the engine cleared both buffers.
type ResetContext struct {
	DiscardedDisplay  int
	DiscardedIncoming int
}

// RenderFaultContext reports a marker that could not be drawn.
type RenderFaultContext struct {
	Tick    int64
	Pass    string
	Subtype core.Subtype
	Err     error
}

// FrameRenderedContext summarizes a produced raster frame.
type FrameRenderedContext struct {
	Tick     int64
	Markers  int
	Faults   int
	Width    int
	Height   int
	Duration time.Duration
}

// RotateHook runs after a display rotation.
type RotateHook func(ctx *RotateContext) error

// RepaintHook runs when the displayed frame should be redrawn.
type RepaintHook func(ctx *RepaintContext) error

// ResetHook runs after the engine was reset.
type ResetHook func(ctx *ResetContext) error

// RenderFaultHook runs for every skipped marker.
type RenderFaultHook func(ctx *RenderFaultContext) error

// FrameRenderedHook runs once per produced frame.
type FrameRenderedHook func(ctx *FrameRenderedContext) error

// PluginBroker coordinates hook registration and triggering.
type PluginBroker struct {
	mu sync.RWMutex

	rotateHooks        []RotateHook
	repaintHooks       []RepaintHook
	resetHooks         []ResetHook
	renderFaultHooks   []RenderFaultHook
	frameRenderedHooks []FrameRenderedHook

	pluginCatalog map[PluginCategory][]PluginDescriptor
	pluginIndex   map[string]PluginDescriptor
}

// NewPluginBroker creates an empty broker instance.
func NewPluginBroker() *PluginBroker {
	return &PluginBroker{
		pluginCatalog: make(map[PluginCategory][]PluginDescriptor),
		pluginIndex:   make(map[string]PluginDescriptor),
	}
}

// RegisterRotate registers a hook for display rotations.
func (p *PluginBroker) RegisterRotate(h RotateHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotateHooks = append(p.rotateHooks, h)
}

// RegisterRepaint registers a hook for repaint requests.
func (p *PluginBroker) RegisterRepaint(h RepaintHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repaintHooks = append(p.repaintHooks, h)
}

// RegisterReset registers a hook for engine resets.
func (p *PluginBroker) RegisterReset(h ResetHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetHooks = append(p.resetHooks, h)
}

// RegisterRenderFault registers a hook for skipped markers.
func (p *PluginBroker) RegisterRenderFault(h RenderFaultHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderFaultHooks = append(p.renderFaultHooks, h)
}

// RegisterFrameRendered registers a hook for produced frames.
func (p *PluginBroker) RegisterFrameRendered(h FrameRenderedHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameRenderedHooks = append(p.frameRenderedHooks, h)
}

// EmitRotate triggers rotation hooks.
func (p *PluginBroker) EmitRotate(ctx *RotateContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RotateHook, len(p.rotateHooks))
	copy(handlers, p.rotateHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitRepaint triggers repaint hooks.
func (p *PluginBroker) EmitRepaint(ctx *RepaintContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RepaintHook, len(p.repaintHooks))
	copy(handlers, p.repaintHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitReset triggers reset hooks.
func (p *PluginBroker) EmitReset(ctx *ResetContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]ResetHook, len(p.resetHooks))
	copy(handlers, p.resetHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitRenderFault triggers render fault hooks.
func (p *PluginBroker) EmitRenderFault(ctx *RenderFaultContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RenderFaultHook, len(p.renderFaultHooks))
	copy(handlers, p.renderFaultHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitFrameRendered triggers frame rendered hooks.
func (p *PluginBroker) EmitFrameRendered(ctx *FrameRenderedContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]FrameRenderedHook, len(p.frameRenderedHooks))
	copy(handlers, p.frameRenderedHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBundle registers a plugin descriptor together with all hook handlers.
func (p *PluginBroker) RegisterBundle(desc PluginDescriptor, bundle HookBundle) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.registerDescriptorLocked(desc)

	p.rotateHooks = append(p.rotateHooks, bundle.Rotate...)
	p.repaintHooks = append(p.repaintHooks, bundle.Repaint...)
	p.resetHooks = append(p.resetHooks, bundle.Reset...)
	p.renderFaultHooks = append(p.renderFaultHooks, bundle.RenderFault...)
	p.frameRenderedHooks = append(p.frameRenderedHooks, bundle.FrameRendered...)
}

// RegisterPluginMetadata stores plugin metadata without registering hooks.
func (p *PluginBroker) RegisterPluginMetadata(desc PluginDescriptor) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerDescriptorLocked(desc)
}

// ListPlugins returns descriptors for plugins in the requested category.
func (p *PluginBroker) ListPlugins(category PluginCategory) []PluginDescriptor {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	catalog := p.pluginCatalog[category]
	if len(catalog) == 0 {
		return nil
	}
	out := make([]PluginDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// ListAllPlugins returns descriptors of every registered plugin.
func (p *PluginBroker) ListAllPlugins() []PluginDescriptor {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]PluginDescriptor, 0, len(p.pluginIndex))
	for _, desc := range p.pluginIndex {
		out = append(out, desc)
	}
	return out
}

func (p *PluginBroker) registerDescriptorLocked(desc PluginDescriptor) {
	if desc.Name == "" {
		return
	}
	if _, exists := p.pluginIndex[desc.Name]; exists {
		return
	}
	p.pluginIndex[desc.Name] = desc
	category := desc.Category
	p.pluginCatalog[category] = append(p.pluginCatalog[category], desc)
}
