// Command supervisord serves the routing supervisor over JSON/HTTP:
// POST /process and GET /health. It consults the three specialist
// services configured in the same file and pings their health endpoints
// at boot, logging (but not failing on) unreachable dependencies.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/deskmesh/deskmesh"
	"github.com/deskmesh/deskmesh/config"
	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/internal/httputil"
	"github.com/deskmesh/deskmesh/knowledge"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/specialist"
	"github.com/deskmesh/deskmesh/supervisor"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	checkDeps := flag.Bool("check-deps", true, "Ping dependency health endpoints at boot")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Service: "supervisor",
	})

	m, err := deskmesh.ModelFromConfig(cfg.Models.Routing)
	if err != nil {
		log.Fatalf("failed to build model: %v", err)
	}
	logger.Info("Model ready", "model", m.Info().Name, "provider", m.Info().Provider)

	dispatchTimeout := time.Duration(cfg.DispatchTimeoutSecs) * time.Second

	var specialists []core.Specialist
	for _, p := range specialist.Profiles() {
		svc, _ := cfg.Services.Specialist(p.Key)
		specialists = append(specialists, specialist.NewClient(p.Key, svc.URL(), func(o *specialist.ClientOptions) {
			o.Timeout = dispatchTimeout
		}))
	}

	if *checkDeps {
		checkDependencies(cfg, specialists, logger)
	}

	sup := supervisor.New(m, specialists, func(o *supervisor.Options) {
		o.DispatchTimeout = dispatchTimeout
		o.Logger = logger
	})

	err = httputil.Serve(cfg.Services.Supervisor.Addr(), supervisor.NewHandler(sup), logger, func(o *httputil.ServeOptions) {
		// The pipeline is one model call on either side of the bounded
		// dispatch phase; give each phase a dispatch-sized window before
		// the server kills the response write.
		o.WriteTimeout = 3 * dispatchTimeout
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// checkDependencies pings each dependency's health endpoint once. An
// unreachable dependency is logged and tolerated; the dispatcher degrades
// it to an unavailable result at query time.
func checkDependencies(cfg *config.Config, specialists []core.Specialist, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	kb := knowledge.NewClient(cfg.Services.Knowledge.URL())
	if err := kb.Health(ctx); err != nil {
		logger.Warn("Knowledge service unreachable", "url", cfg.Services.Knowledge.URL(), "error", err)
	} else {
		logger.Info("Knowledge service healthy", "url", cfg.Services.Knowledge.URL())
	}

	for _, sp := range specialists {
		client, ok := sp.(*specialist.Client)
		if !ok {
			continue
		}
		if err := client.Health(ctx); err != nil {
			logger.Warn("Specialist unreachable", "agent", client.Name(), "error", err)
		} else {
			logger.Info("Specialist healthy", "agent", client.Name())
		}
	}
}
