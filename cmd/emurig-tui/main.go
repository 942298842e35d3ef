package main

import (
	"context"
	"flag"
	"log"
	"time"

	"emurig/internal/config"
	"emurig/internal/device"
	"emurig/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	mgr := device.NewManager(cfg, device.DockerRunner{})

	err = tui.Run(mgr)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	mgr.ReleaseAll(ctx)

	if err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
