package action

import (
	"github.com/cloudwego/eino/schema"

	"github.com/pokus-ai/taskpanel/engine/contract"
)

// Catalog declares the invocable frontend actions the agent collaborator may
// call, with their parameter schemas. Handlers live in this package too; the
// catalogue and the dispatch switch must stay in step.
func Catalog() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: contract.ActionSelectPharmacy,
			Desc: "Select one pharmacy from the current search results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"pharmacy_id": {Type: schema.String, Desc: "Id of the pharmacy to select", Required: true},
			}),
		},
		{
			Name: contract.ActionExportItinerary,
			Desc: "Export the current travel itinerary as plain text.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"title": {Type: schema.String, Desc: "Optional document title"},
			}),
		},
		{
			Name: contract.ActionSaveToFavorites,
			Desc: "Save the selected pharmacy or the current itinerary to favorites.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"kind":  {Type: schema.String, Desc: "What to save: pharmacy or itinerary", Required: true},
				"label": {Type: schema.String, Desc: "Optional display label"},
			}),
		},
	}
}
