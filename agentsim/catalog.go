package agentsim

import (
	"github.com/cloudwego/eino/schema"

	"github.com/pokus-ai/taskpanel/engine/contract"
)

// Domain selects one of the two task-tool groups.
type Domain string

const (
	DomainMedicine Domain = "medicine"
	DomainTravel   Domain = "travel"
)

// ToolInfos declares the tool schemas the simulated agent advertises for a
// domain. The names must match the engine's reducer table.
func ToolInfos(domain Domain) []*schema.ToolInfo {
	switch domain {
	case DomainMedicine:
		return []*schema.ToolInfo{
			{
				Name: contract.ToolSearchPharmacies,
				Desc: "Search for pharmacies near a location that might stock a medicine.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"medicine_name": {Type: schema.String, Desc: "Medicine to look for", Required: true},
					"location":      {Type: schema.String, Desc: "City, neighborhood or address", Required: true},
					"radius_km":     {Type: schema.Number, Desc: "Search radius in kilometers"},
				}),
			},
			{
				Name: contract.ToolCheckAvailability,
				Desc: "Check whether one pharmacy has the medicine in stock.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"pharmacy_id":   {Type: schema.String, Desc: "Pharmacy id from search results", Required: true},
					"pharmacy_name": {Type: schema.String, Desc: "Pharmacy display name"},
					"medicine_name": {Type: schema.String, Desc: "Medicine to check", Required: true},
					"location":      {Type: schema.String, Desc: "Location context"},
				}),
			},
			{
				Name: contract.ToolCallPharmacy,
				Desc: "Simulate a call to a pharmacy to confirm stock and reserve units. Requires user confirmation first.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"pharmacy_id":     {Type: schema.String, Desc: "Pharmacy id"},
					"pharmacy_name":   {Type: schema.String, Desc: "Pharmacy display name", Required: true},
					"medicine_name":   {Type: schema.String, Desc: "Medicine to ask about", Required: true},
					"quantity_needed": {Type: schema.Integer, Desc: "Units to reserve"},
				}),
			},
		}
	case DomainTravel:
		return []*schema.ToolInfo{
			{
				Name: contract.ToolUpdatePreferences,
				Desc: "Store travel preferences as they are gathered from the user.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"destination": {Type: schema.String, Desc: "Destination city or country"},
					"start_date":  {Type: schema.String, Desc: "Start date YYYY-MM-DD"},
					"end_date":    {Type: schema.String, Desc: "End date YYYY-MM-DD"},
					"budget":      {Type: schema.String, Desc: "budget, moderate or luxury"},
					"interests":   {Type: schema.String, Desc: "Comma-separated interests"},
					"pace":        {Type: schema.String, Desc: "relaxed, moderate or packed"},
					"travelers":   {Type: schema.Integer, Desc: "Number of travelers"},
				}),
			},
			{
				Name: contract.ToolGenerateItinerary,
				Desc: "Create a day-by-day itinerary for the gathered preferences.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"destination": {Type: schema.String, Desc: "Destination", Required: true},
					"start_date":  {Type: schema.String, Desc: "Start date YYYY-MM-DD", Required: true},
					"end_date":    {Type: schema.String, Desc: "End date YYYY-MM-DD", Required: true},
					"budget":      {Type: schema.String, Desc: "budget, moderate or luxury"},
					"interests":   {Type: schema.String, Desc: "Comma-separated interests"},
					"pace":        {Type: schema.String, Desc: "relaxed, moderate or packed"},
				}),
			},
			{
				Name: contract.ToolModifyItinerary,
				Desc: "Remove, add or replace one activity on an itinerary day.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"day":                      {Type: schema.Integer, Desc: "Day number, 1-indexed", Required: true},
					"action":                   {Type: schema.String, Desc: "remove, add or replace", Required: true},
					"activity_index":           {Type: schema.Integer, Desc: "Activity position for remove/replace"},
					"new_activity_title":       {Type: schema.String, Desc: "Title for add/replace"},
					"new_activity_description": {Type: schema.String, Desc: "Description for add/replace"},
					"new_activity_time":        {Type: schema.String, Desc: "Time for add/replace, e.g. 14:00"},
				}),
			},
			{
				Name: contract.ToolSearchActivities,
				Desc: "Find activity recommendations of one type at a destination.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"destination":   {Type: schema.String, Desc: "Destination", Required: true},
					"activity_type": {Type: schema.String, Desc: "culture, food, adventure, relaxation, shopping, art or nature", Required: true},
					"budget":        {Type: schema.String, Desc: "budget, moderate or luxury"},
				}),
			},
		}
	default:
		return nil
	}
}
