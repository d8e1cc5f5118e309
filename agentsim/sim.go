// Package agentsim simulates the agent collaborator that feeds the panel
// engine. Each tool emits a pending event, does its (real or simulated) work
// and emits a complete event carrying the result record. Routing and chat
// reasoning stay outside this package.
package agentsim

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/cloudwego/eino/compose"
	openaisdk "github.com/openai/openai-go"

	"github.com/pokus-ai/taskpanel/engine/contract"
	"github.com/pokus-ai/taskpanel/pkg/openrouter"
	"github.com/pokus-ai/taskpanel/pkg/tavily"
)

// Simulator drives the tool side of the conversation. Web search and LLM
// synthesis are optional; without them every tool falls back to deterministic
// simulated data so the demo runs offline.
type Simulator struct {
	dispatcher contract.Dispatcher
	states     contract.StateProvider

	search    *tavily.Client
	recClient *openaisdk.Client
	recModel  string

	pharmacyRunner  compose.Runnable[map[string]any, pharmacySynthesis]
	itineraryRunner compose.Runnable[map[string]any, itinerarySynthesis]

	rng *rand.Rand
	now func() time.Time
}

type Option func(*Simulator)

// WithWebSearch enables Tavily-backed research for searches and itineraries.
func WithWebSearch(client *tavily.Client) Option {
	return func(s *Simulator) { s.search = client }
}

// WithRecommendationClient enables LLM-written activity recommendations.
func WithRecommendationClient(client *openaisdk.Client, model string) Option {
	return func(s *Simulator) {
		s.recClient = client
		s.recModel = model
	}
}

// WithSeed makes the simulated randomness reproducible. Used by tests.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides the simulator clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func New(dispatcher contract.Dispatcher, states contract.StateProvider, opts ...Option) (*Simulator, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if states == nil {
		return nil, errors.New("state provider is required")
	}

	s := &Simulator{
		dispatcher: dispatcher,
		states:     states,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnableSynthesis compiles the structured-output graphs used to turn web
// research into panel data. Without it search results use the deterministic
// fallback even when web search is configured.
func (s *Simulator) EnableSynthesis(ctx context.Context, builder openrouter.LLMBuilder) error {
	if builder == nil {
		return errors.New("llm builder is required")
	}
	chatModel, err := builder.New(ctx)
	if err != nil {
		return err
	}

	prompts := LoadPromptSet()
	pharmacyRunner, err := compilePharmacySynthGraph(ctx, chatModel, prompts.Pharmacy)
	if err != nil {
		return err
	}
	itineraryRunner, err := compileItinerarySynthGraph(ctx, chatModel, prompts.Itinerary)
	if err != nil {
		return err
	}

	s.pharmacyRunner = pharmacyRunner
	s.itineraryRunner = itineraryRunner
	return nil
}

func (s *Simulator) emit(tool string, phase contract.Phase, args, result map[string]any) {
	s.dispatcher.Dispatch(contract.ToolCallEvent{
		Tool:   tool,
		Phase:  phase,
		Args:   args,
		Result: result,
	})
}

func (s *Simulator) emitPending(tool string, args any) map[string]any {
	rec := contract.Record(args)
	s.emit(tool, contract.PhasePending, rec, nil)
	return rec
}

func (s *Simulator) emitComplete(tool string, args map[string]any, result any) {
	s.emit(tool, contract.PhaseComplete, args, contract.Record(result))
}
