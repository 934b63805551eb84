/*
This is an example application that drives the loader
package to fetch a handful of assets
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/config"
	"github.com/mochi2d/mochi/engine/core"
	"github.com/mochi2d/mochi/engine/loader"
	"github.com/mochi2d/mochi/engine/loader/filetypes"
	"github.com/mochi2d/mochi/engine/textures"
)

func main() {
	cfgPath := flag.String("config", "", "path to a TOML loader config")
	assetDir := flag.String("assets", "assets", "local asset root")
	flag.Parse()

	var cfg *config.LoaderConfig
	if *cfgPath != "" {
		c, err := config.LoadFile(*cfgPath)
		if err != nil {
			core.LogFatal(err.Error())
		}
		cfg = c
	} else {
		cfg = config.Default()
		cfg.LocalRoot = *assetDir
	}

	caches := cache.NewManager()
	texs := textures.NewManager()
	ld := loader.New(cfg, caches, texs)

	core.EventRegister(core.EVENT_CODE_LOAD_PROGRESS, nil,
		func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
			core.LogInfo("progress %.0f%%", data.Progress*100)
			return false
		})

	files := []*loader.File{
		filetypes.Image("logo", "logo.png"),
		filetypes.TilemapJSON("level1", "maps/level1.json"),
		filetypes.HTMLTexture("scoreboard", "ui/scoreboard.html",
			filetypes.HTMLTextureOptions{Width: 256, Height: 128}),
		filetypes.Text("credits", "credits.txt"),
	}
	for _, f := range files {
		if err := ld.Enqueue(f); err != nil {
			core.LogWarn(err.Error())
		}
	}

	// signal channel to capture system calls
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := ld.Start(ctx); err != nil {
		core.LogFatal(err.Error())
	}

	completed, failed, bytes, avgMS := core.MetricsSnapshot()
	core.LogInfo("done: %d ok, %d failed, %d bytes, avg %.1fms", completed, failed, bytes, avgMS)

	if cfg.WatchAssets {
		w, err := loader.NewWatcher(ld)
		if err != nil {
			core.LogFatal(err.Error())
		}
		defer w.Close()
		for _, f := range files {
			if f.State() == loader.FileStateComplete {
				_ = w.Watch(f)
			}
		}
		core.LogInfo("watching '%s' for changes, ctrl-c to exit", cfg.LocalRoot)
		<-ctx.Done()
	}
}
