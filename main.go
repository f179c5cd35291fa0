package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/netsim_playback/scenario"
)

func main() {
	var configPath = flag.String("config", "", "Path to a YAML configuration file")
	var headless = flag.Bool("headless", false, "Run in headless mode (no viewer, no pacing delay)")
	var visualMode = flag.String("visual", "", "Viewer: web, gui or none (overrides config)")
	var scenarioName = flag.String("scenario", "", "Built-in scenario name or path to a scenario YAML file")
	var outPath = flag.String("out", "", "Write the final frame to this PNG file")
	var printSchema = flag.Bool("schema", false, "Print the configuration JSON schema and exit")
	var listScenarios = flag.Bool("list", false, "List built-in scenarios and exit")
	var speed = flag.Int("speed", 0, "Playback speed in ms per tick (overrides config)")
	flag.Parse()

	if *printSchema {
		data, err := ConfigSchema()
		if err != nil {
			fatal(err)
		}
		os.Stdout.Write(append(data, '\n'))
		return
	}
	if *listScenarios {
		for _, p := range scenario.GetPredefinedScenarios() {
			fmt.Printf("%-14s %s\n", p.Name, p.Description)
		}
		return
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	if *visualMode != "" {
		cfg.Visual.Mode = *visualMode
	}
	if *scenarioName != "" {
		if _, err := os.Stat(*scenarioName); err == nil {
			cfg.Scenario.Path = *scenarioName
		} else {
			cfg.Scenario.Name = *scenarioName
			cfg.Scenario.Path = ""
		}
	}
	if *speed > 0 {
		cfg.Pacing.MsPerTick = *speed
	}

	app, err := NewApp(cfg, AppOptions{Headless: *headless, OutPath: *outPath})
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if gui := app.GUI(); gui != nil {
		// fyne owns the main goroutine; playback runs beside it.
		go func() {
			if err := app.Run(ctx); err != nil {
				GetLogger().Errorf("Playback failed: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			app.Close()
		}()
		gui.ShowAndRun()
		return
	}

	if err := app.Run(ctx); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	GetLogger().Errorf("%v", err)
	os.Exit(1)
}
