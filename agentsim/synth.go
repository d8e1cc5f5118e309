package agentsim

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/pokus-ai/taskpanel/engine/contract"
)

// pharmacySynthesis is the JSON shape the pharmacy prompt asks the model for.
type pharmacySynthesis struct {
	Pharmacies    []contract.PharmacyResult `json:"pharmacies"`
	TotalFound    int                       `json:"total_found"`
	SearchSummary string                    `json:"search_summary"`
}

// itinerarySynthesis is the JSON shape the itinerary prompt asks the model for.
type itinerarySynthesis struct {
	Itinerary []contract.DayPlanResult `json:"itinerary"`
	TotalCost float64                  `json:"total_cost"`
}

func compilePharmacySynthGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, pharmacySynthesis], error) {
	runner, err := compileSynthGraph[pharmacySynthesis](ctx, chatModel, systemPrompt, "agentsim.pharmacy_synth_graph")
	if err != nil {
		return nil, fmt.Errorf("compile pharmacy synthesis graph: %w", err)
	}
	return runner, nil
}

func compileItinerarySynthGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, itinerarySynthesis], error) {
	runner, err := compileSynthGraph[itinerarySynthesis](ctx, chatModel, systemPrompt, "agentsim.itinerary_synth_graph")
	if err != nil {
		return nil, fmt.Errorf("compile itinerary synthesis graph: %w", err)
	}
	return runner, nil
}

// compileSynthGraph builds a prompt -> model -> JSON-parse pipeline that
// yields one typed value per invocation. The template binds {input} from the
// invocation map.
func compileSynthGraph[T any](
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, T], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	parser := schema.NewMessageJSONParser[T](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, T]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add synth prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add synth model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add synth parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add synth edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add synth edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add synth edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add synth edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile synth graph: %w", err)
	}
	return runner, nil
}
