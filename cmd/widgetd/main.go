package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nexushq/widget-go/internal/config"
	"github.com/nexushq/widget-go/internal/logger"
	"github.com/nexushq/widget-go/internal/widget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		return
	}
	logger.SetLevel(cfg.LogLevel)

	manager := widget.NewManager()
	w := manager.Start(*cfg)

	// Enrichment is asynchronous; the widget renders with defaults
	// until it lands and never fails construction.
	go w.Resolve(context.Background())

	srv := newServer(manager)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.L.Info("starting widget host", "address", serverAddr)
	if err := http.ListenAndServe(serverAddr, srv.routes()); err != nil {
		logger.L.Error("failed to start widget host", "error", err)
	}
}
