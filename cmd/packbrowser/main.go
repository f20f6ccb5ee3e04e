// Pack Browser - a graphical tool for browsing the asset packs of a project.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/config"
	"github.com/Faultbox/packstudio/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Project.Root == "" {
		dir, err := dialog.Directory().Title("Open Project").Browse()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Error("directory dialog failed", zap.Error(err))
			}
			os.Exit(1)
		}
		cfg.Project.Root = dir
	}

	logger.Info("starting pack browser", zap.String("project", cfg.Project.Root), zap.String("layout", cfg.Viewer.Layout))

	app, err := NewApp(cfg)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("browser exited with error", zap.Error(err))
		os.Exit(1)
	}

	if err := cfg.Save(); err != nil {
		logger.Warn("failed to save config", zap.Error(err))
	}
}
