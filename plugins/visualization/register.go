package visualization

import (
	"fmt"
	"sort"

	"github.com/example/netsim_playback/hooks"
	"github.com/example/netsim_playback/simulator"
	"github.com/example/netsim_playback/visual"
)

// Factory creates the viewer for one visual mode.
type Factory func() (visual.Visualizer, error)

// Options configure visualization plugin registration.
type Options struct {
	Factories map[string]Factory
	// Use receives the viewer once its plugin is loaded.
	Use func(visual.Visualizer)
}

// Register registers one plugin per visual mode. Loading a plugin builds the
// viewer, routes repaint requests to it and hands it to Options.Use.
func Register(reg *hooks.Registry, opts Options) error {
	if reg == nil {
		return fmt.Errorf("registry is nil")
	}
	if opts.Use == nil {
		return fmt.Errorf("Use callback is required")
	}
	modes := make([]string, 0, len(opts.Factories))
	for mode, factory := range opts.Factories {
		if factory != nil {
			modes = append(modes, mode)
		}
	}
	sort.Strings(modes)
	for _, mode := range modes {
		name := PluginName(mode)
		desc := hooks.PluginDescriptor{
			Name:        name,
			Category:    hooks.PluginCategoryVisualization,
			Description: fmt.Sprintf("%s viewer", mode),
		}
		factory := opts.Factories[mode]
		if err := reg.Register(name, desc, func(broker *hooks.PluginBroker) error {
			viewer, err := factory()
			if err != nil {
				return fmt.Errorf("%s viewer: %w", mode, err)
			}
			simulator.NewRepaintBridge(viewer.IsHeadless(), viewer.RequestRepaint).Install(broker)
			opts.Use(viewer)
			return nil
		}); err != nil {
			return err
		}
		reg.Broker().RegisterPluginMetadata(desc)
	}
	return nil
}

// PluginName returns the registry name of the plugin for mode.
func PluginName(mode string) string {
	return "visualization/" + mode
}
