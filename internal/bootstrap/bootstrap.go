// Package bootstrap wires the configured adapters into the conversation
// pipeline. Both binaries build their App here.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	memcache "github.com/PabloGalante/taborra-agent/internal/adapters/cache/memory"
	rediscache "github.com/PabloGalante/taborra-agent/internal/adapters/cache/redis"
	"github.com/PabloGalante/taborra-agent/internal/adapters/homeassistant"
	"github.com/PabloGalante/taborra-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/taborra-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/taborra-agent/internal/adapters/storage/memory"
	sqlstore "github.com/PabloGalante/taborra-agent/internal/adapters/storage/sql"
	"github.com/PabloGalante/taborra-agent/internal/app/conversation"
	"github.com/PabloGalante/taborra-agent/internal/app/dialogue"
	"github.com/PabloGalante/taborra-agent/internal/app/ratings"
	"github.com/PabloGalante/taborra-agent/internal/app/session"
	"github.com/PabloGalante/taborra-agent/internal/app/tools"
	"github.com/PabloGalante/taborra-agent/internal/app/troubleshooting"
	"github.com/PabloGalante/taborra-agent/internal/catalog"
	"github.com/PabloGalante/taborra-agent/internal/config"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

// CallbackPath is where home-automation webhooks post their results.
const CallbackPath = "/webhook/home_assistant_response"

type cacheBackend interface {
	domain.Cache
	domain.HistoryStore
}

type App struct {
	Conversation *conversation.Service
	Ratings      *ratings.Service
	Registry     *prometheus.Registry
	Store        domain.Store

	closers []func() error
}

// Close releases the backends in reverse order of creation.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build creates every collaborator selected by cfg around delivery.
func Build(ctx context.Context, cfg *config.Config, delivery domain.Delivery) (*App, error) {
	log := observability.WithFields("component", "bootstrap")
	app := &App{Registry: prometheus.NewRegistry()}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(app.Registry)

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		cat = loaded
	}
	log.Info("catalog loaded", "devices", len(cat.ListDevices()))

	llmClient, err := newLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("llm client ready", "provider", cfg.LLMProvider, "model", cfg.ModelName)

	store, err := app.newStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store
	log.Info("durable store ready", "backend", cfg.StorageBackend)

	cache, err := app.newCache(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	log.Info("cache ready", "backend", cfg.CacheBackend)

	var monitor domain.SecurityMonitor
	if cfg.Mode == config.ModeLocal {
		monitor = homeassistant.NewSimulatedMonitor()
	}

	router := dialogue.NewDefaultRouter(dialogue.Deps{
		Engine:    troubleshooting.NewEngine(cat, metrics),
		Generator: llmClient,
		Monitor:   monitor,
		Metrics:   metrics,
	})

	callbackURL := ""
	if cfg.PublicBaseURL != "" {
		callbackURL = strings.TrimRight(cfg.PublicBaseURL, "/") + CallbackPath
	}
	tool := tools.NewHomeAutomationTool(store, homeassistant.NewClient(nil), callbackURL, cfg.AutomationCallbackToken)

	app.Conversation = conversation.NewService(conversation.Deps{
		Classifier: llmClient,
		Router:     router,
		Sessions:   session.NewStore(cache, cfg.SessionTTL),
		Cache:      cache,
		History:    cache,
		Store:      store,
		Delivery:   delivery,
		Tool:       tool,
		Metrics:    metrics,
	}, conversation.Options{
		HistoryLimit:    cfg.HistoryLimit,
		DedupTTL:        cfg.DedupTTL,
		BusinessInfoTTL: cfg.BusinessInfoTTL,
		PublicBaseURL:   cfg.PublicBaseURL,
	})
	app.Ratings = ratings.NewService(store)
	return app, nil
}

func newLLM(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	switch cfg.LLMProvider {
	case "vertex":
		c, err := llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("init vertex client: %w", err)
		}
		return c, nil
	case "openai":
		c, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil
	default:
		return llm.NewMockLLM(), nil
	}
}

func (a *App) newStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	switch cfg.StorageBackend {
	case "firestore":
		s, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("init firestore store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case "sql":
		s, err := sqlstore.NewStore(cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, fmt.Errorf("init sql store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		if err := seedBusinessInfo(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return memstore.NewStore(memstore.DemoBusinessInfo()), nil
	}
}

// seedBusinessInfo fills an empty SQL business_info table with the demo facts.
func seedBusinessInfo(ctx context.Context, s *sqlstore.Store) error {
	info, err := s.LoadBusinessInfo(ctx)
	if err != nil {
		return err
	}
	if len(info) > 0 {
		return nil
	}
	for k, v := range memstore.DemoBusinessInfo() {
		if err := s.PutBusinessInfo(ctx, k, v); err != nil {
			return fmt.Errorf("seed business info: %w", err)
		}
	}
	return nil
}

func (a *App) newCache(ctx context.Context, cfg *config.Config) (cacheBackend, error) {
	switch cfg.CacheBackend {
	case "redis":
		c, err := rediscache.NewCacheFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	default:
		return memcache.NewCache(), nil
	}
}
