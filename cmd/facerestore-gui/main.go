package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"

	"github.com/dudu/facerestore/internal/config"
	"github.com/dudu/facerestore/internal/gui"
	"github.com/dudu/facerestore/internal/logging"
	"github.com/dudu/facerestore/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(nil, configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	// Load the models up front so the first restore is not delayed
	rt, err := pipeline.New(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	a := app.NewWithID(gui.AppID)
	gui.NewWindow(a, rt, log).ShowAndRun()
	return nil
}
