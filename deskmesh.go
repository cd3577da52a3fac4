// Package deskmesh provides a high-level façade wiring the knowledge
// store, the three domain specialists and the routing supervisor into a
// single in-process pipeline. Most applications interact with this
// package by:
//  1. Creating a DeskMesh via New() (optionally overriding models, the
//     knowledge directory and the logger)
//  2. Calling Process with a user query
//
// The façade is the no-HTTP composition of the system; the cmd/ daemons
// assemble the same pieces as separate services talking JSON over HTTP.
// All defaults are safe for local development and testing; production
// deployments supply real generation models and a structured logger.
package deskmesh

import (
	"context"
	"fmt"

	"github.com/deskmesh/deskmesh/config"
	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/knowledge"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
	anthropicmodel "github.com/deskmesh/deskmesh/model/anthropic"
	openaimodel "github.com/deskmesh/deskmesh/model/openai"
	"github.com/deskmesh/deskmesh/specialist"
	"github.com/deskmesh/deskmesh/supervisor"
)

// Options configures the DeskMesh instance.
type Options struct {
	// KnowledgeDir is the directory holding the *_kb.csv collections.
	KnowledgeDir string

	// RoutingModel drives classification and synthesis. Defaults to a
	// MockModel, which keeps examples and tests hermetic.
	RoutingModel model.Model

	// SpecialistModel drives the domain responders. Defaults to the
	// routing model.
	SpecialistModel model.Model

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// DeskMesh aggregates the knowledge store, the specialists and the
// supervisor behind one Process call.
type DeskMesh struct {
	opts        Options
	store       *knowledge.Store
	specialists []core.Specialist
	supervisor  *supervisor.Supervisor
}

// New creates a DeskMesh with optional overrides. Every registered
// specialist profile gets an in-process responder backed by the shared
// knowledge store.
func New(optFns ...func(o *Options)) *DeskMesh {
	opts := Options{
		KnowledgeDir: "kb",
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RoutingModel == nil {
		opts.RoutingModel = model.NewMockModel("mock", "mock")
	}
	if opts.SpecialistModel == nil {
		opts.SpecialistModel = opts.RoutingModel
	}

	store := knowledge.NewStore(func(o *knowledge.StoreOptions) {
		o.Dir = opts.KnowledgeDir
		o.Logger = opts.Logger
	})

	var specialists []core.Specialist
	for _, profile := range specialist.Profiles() {
		specialists = append(specialists, specialist.New(profile, store, opts.SpecialistModel, func(o *specialist.Options) {
			o.Logger = opts.Logger
		}))
	}

	sup := supervisor.New(opts.RoutingModel, specialists, func(o *supervisor.Options) {
		o.Logger = opts.Logger
	})

	return &DeskMesh{
		opts:        opts,
		store:       store,
		specialists: specialists,
		supervisor:  sup,
	}
}

// Process runs the full pipeline for a user query.
func (d *DeskMesh) Process(ctx context.Context, query string) core.FinalAnswer {
	return d.supervisor.Process(ctx, query)
}

// Store exposes the underlying knowledge store.
func (d *DeskMesh) Store() *knowledge.Store { return d.store }

// Supervisor exposes the underlying routing supervisor.
func (d *DeskMesh) Supervisor() *supervisor.Supervisor { return d.supervisor }

// Specialists returns the registered in-process specialists.
func (d *DeskMesh) Specialists() []core.Specialist { return d.specialists }

// ModelFromConfig constructs a generation model from a config selection.
// An empty or "mock" provider yields a MockModel.
func ModelFromConfig(mc config.ModelConfig) (model.Model, error) {
	switch mc.Provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.ReasoningModel = mc.Reasoning
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if mc.Name != "" {
				o.Model = anthropicmodel.ModelName(mc.Name)
			}
		}), nil
	case "mock", "":
		name := mc.Name
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name, "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", mc.Provider)
	}
}
