// Command specialistd serves one domain specialist over JSON/HTTP:
// POST /process and GET /health. The -domain flag selects which profile
// (windows, office, hardware) this instance embodies; retrieval goes to
// the knowledge service configured in the same file.
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/deskmesh/deskmesh"
	"github.com/deskmesh/deskmesh/config"
	"github.com/deskmesh/deskmesh/internal/httputil"
	"github.com/deskmesh/deskmesh/knowledge"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/specialist"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	domain := flag.String("domain", "windows", "Specialist domain: windows, office or hardware")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	profile, ok := specialist.ProfileFor(*domain)
	if !ok {
		log.Fatalf("unknown domain %q", *domain)
	}
	svc, _ := cfg.Services.Specialist(profile.Key)

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Service: profile.Key,
	})

	m, err := deskmesh.ModelFromConfig(cfg.Models.Specialist)
	if err != nil {
		log.Fatalf("failed to build model: %v", err)
	}
	logger.Info("Model ready", "model", m.Info().Name, "provider", m.Info().Provider)

	kb := knowledge.NewClient(cfg.Services.Knowledge.URL(), func(o *knowledge.ClientOptions) {
		o.Logger = logger
	})

	responder := specialist.New(profile, kb, m, func(o *specialist.Options) {
		o.KnowledgeLimit = cfg.Knowledge.SearchLimit
		o.Logger = logger
	})

	if err := httputil.Serve(svc.Addr(), specialist.NewHandler(responder), logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
