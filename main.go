package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/agentsim"
	"github.com/pokus-ai/taskpanel/engine/action"
	"github.com/pokus-ai/taskpanel/engine/dispatch"
	"github.com/pokus-ai/taskpanel/engine/session"
	statex "github.com/pokus-ai/taskpanel/engine/state"
	"github.com/pokus-ai/taskpanel/engine/suggest"
	configx "github.com/pokus-ai/taskpanel/pkg/config"
	_ "github.com/pokus-ai/taskpanel/pkg/logger/autoload"
	openrouterx "github.com/pokus-ai/taskpanel/pkg/openrouter"
	tavilyx "github.com/pokus-ai/taskpanel/pkg/tavily"
)

type AppConfig struct {
	StoreBackend string `envconfig:"STORE_BACKEND" split_words:"true" default:"file"`
	StatePath    string `envconfig:"STATE_PATH" split_words:"true" default:".taskpanel"`

	// Demo runs both scripted scenarios and prints the resulting panel state.
	Demo bool `envconfig:"DEMO" split_words:"true" default:"true"`

	DemoMedicine    string `envconfig:"DEMO_MEDICINE" split_words:"true" default:"paracetamol"`
	DemoLocation    string `envconfig:"DEMO_LOCATION" split_words:"true" default:"San Francisco"`
	DemoDestination string `envconfig:"DEMO_DESTINATION" split_words:"true" default:"Lisbon"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("POKUS")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup := buildStore(appCfg)
	defer cleanup()

	sessions, err := session.NewManager(store)
	if err != nil {
		log.Fatal().Err(err).Msg("session manager init failed")
	}
	sess, err := sessions.LoadOrCreate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("session load failed")
	}
	log.Info().Str("session_id", sess.ID).Time("started", sess.StartAt).Msg("session ready")

	engine, err := dispatch.New(store)
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}
	engine.Subscribe(func(s statex.UnifiedState) {
		log.Info().
			Str("active_task", string(s.ActiveTask)).
			Str("medicine_stage", string(s.Medicine.Stage)).
			Str("travel_stage", string(s.Travel.Stage)).
			Str("hint", suggest.Hint(s)).
			Msg("panel state changed")
	})
	go engine.Run(ctx)

	handlers, err := action.NewHandlers(engine, engine, store)
	if err != nil {
		log.Fatal().Err(err).Msg("action handlers init failed")
	}

	sim, err := buildSimulator(ctx, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("simulator init failed")
	}

	if appCfg.Demo {
		runDemo(ctx, appCfg, sim, handlers, engine)
		return
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

// buildStore selects the persistence backend. The file store is the default
// so the demo works with zero external services.
func buildStore(cfg *AppConfig) (statex.DocumentStore, func()) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreBackend)) {
	case "memory":
		return statex.NewMemoryStore(), func() {}
	case "redis":
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("redis store init failed")
		}
		return store, func() {}
	case "postgres":
		pgCfg := configx.MustNew[statex.PostgresConfig]("POSTGRES")
		store, err := statex.NewPostgresStore(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres store init failed")
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("postgres schema init failed")
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("postgres close failed")
			}
		}
	default:
		store, err := statex.NewFileStore(cfg.StatePath)
		if err != nil {
			log.Fatal().Err(err).Msg("file store init failed")
		}
		return store, func() {}
	}
}

// buildSimulator wires optional web search and LLM synthesis; both degrade
// to offline simulation when not configured.
func buildSimulator(ctx context.Context, engine *dispatch.Engine) (*agentsim.Simulator, error) {
	var opts []agentsim.Option

	if os.Getenv("TAVILY_API_KEY") != "" {
		tavilyCfg := configx.MustNew[tavilyx.Config]("TAVILY")
		opts = append(opts, agentsim.WithWebSearch(tavilyx.MustNew(*tavilyCfg)))
	}

	var llmCfg *openrouterx.Config
	if os.Getenv("OPENROUTER_API_KEY") != "" {
		llmCfg = configx.MustNew[openrouterx.Config]("OPENROUTER")
		if client := openrouterx.NewClient(*llmCfg); client != nil {
			opts = append(opts, agentsim.WithRecommendationClient(client, llmCfg.Model))
		}
	}

	sim, err := agentsim.New(engine, engine, opts...)
	if err != nil {
		return nil, err
	}

	if llmCfg != nil {
		if err := sim.EnableSynthesis(ctx, llmCfg); err != nil {
			log.Warn().Err(err).Msg("llm synthesis unavailable, using simulated data")
		}
	}
	return sim, nil
}

func runDemo(ctx context.Context, cfg *AppConfig, sim *agentsim.Simulator, handlers *action.Handlers, engine *dispatch.Engine) {
	if err := sim.RunMedicineScenario(ctx, cfg.DemoMedicine, cfg.DemoLocation); err != nil {
		log.Error().Err(err).Msg("medicine scenario failed")
	}

	start := time.Now().AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 4)
	if err := sim.RunTravelScenario(ctx, cfg.DemoDestination, start.Format("2006-01-02"), end.Format("2006-01-02")); err != nil {
		log.Error().Err(err).Msg("travel scenario failed")
	}

	// Let the engine drain before reading the final snapshot.
	time.Sleep(200 * time.Millisecond)

	ack, err := handlers.Execute(ctx, "export_itinerary", map[string]any{})
	if err != nil {
		log.Error().Err(err).Msg("itinerary export failed")
	} else if ack.Success {
		fmt.Println(ack.Message)
	}

	snap := engine.Snapshot()
	log.Info().
		Str("active_task", string(snap.ActiveTask)).
		Int("pharmacies", len(snap.Medicine.Pharmacies)).
		Int("itinerary_days", len(snap.Travel.Itinerary)).
		Float64("trip_cost", snap.Travel.TotalCost).
		Msg("demo finished")
}
