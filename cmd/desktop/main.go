package main

import (
	"flag"
	"os"

	"tap_duel/internal/assets"
	"tap_duel/internal/config"
	"tap_duel/internal/host/desktop"
	"tap_duel/internal/logger"
	"tap_duel/internal/store"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("MATCH_CONFIG"), "match config JSON (defaults built in)")
	assetDir := flag.String("assets", "assets", "asset directory")
	storePath := flag.String("store", "", "settings file (default <user config dir>/tap_duel/store.json)")
	width := flag.Int("width", 800, "window width")
	height := flag.Int("height", 600, "window height")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	logger.Init(*logLevel, false)

	cfg, err := config.LoadMatch(*configPath)
	if err != nil {
		logger.Fatal("match config", "error", err)
	}

	path := *storePath
	if path == "" {
		if path, err = store.DefaultFilePath(); err != nil {
			logger.Fatal("settings file", "error", err)
		}
	}

	host := desktop.New(cfg, desktop.Options{
		Loader: assets.NewLoader(os.DirFS(*assetDir), 0),
		Store:  store.NewFile(path),
		Width:  *width,
		Height: *height,
	})

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle(cfg.Settings.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(host); err != nil {
		logger.Fatal("run", "error", err)
	}
}
