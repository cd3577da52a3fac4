// Command knowledged serves the CSV-backed knowledge collections over
// JSON/HTTP: POST /search/{collection}, GET /collections/{collection} and
// GET /health.
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/deskmesh/deskmesh/config"
	"github.com/deskmesh/deskmesh/internal/httputil"
	"github.com/deskmesh/deskmesh/knowledge"
	"github.com/deskmesh/deskmesh/logging"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Service: "knowledge",
	})

	store := knowledge.NewStore(func(o *knowledge.StoreOptions) {
		o.Dir = cfg.Knowledge.Dir
		o.Logger = logger
	})
	logger.Info("Knowledge store ready", "collections", store.Collections())

	handler := knowledge.NewHandler(store, func(o *knowledge.HandlerOptions) {
		o.Logger = logger
	})

	if err := httputil.Serve(cfg.Services.Knowledge.Addr(), handler, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
