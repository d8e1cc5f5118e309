package agentsim

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/pharmacy.txt
	pharmacyRaw string

	//go:embed template/itinerary.txt
	itineraryRaw string
)

// PromptSet holds the synthesis system prompts.
type PromptSet struct {
	Pharmacy  string
	Itinerary string
}

// LoadPromptSet returns the embedded prompts, trimmed. Safe to call
// concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Pharmacy:  strings.TrimSpace(pharmacyRaw),
		Itinerary: strings.TrimSpace(itineraryRaw),
	}
}
