package dispatch

import (
	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

// Reducer folds one tool-call event into the next unified state. Reducers are
// pure: they receive a private clone and return the value to persist. A
// complete event must be safe to apply without a prior pending, and safe to
// apply twice in a row.
type Reducer func(statex.UnifiedState, contract.ToolCallEvent) statex.UnifiedState

// defaultReducers is the fixed routing table. Each tool touches only its own
// domain sub-state plus the shared ActiveTask flag, so events for different
// tools commute except for that flag (last-write-wins).
func defaultReducers() map[string]Reducer {
	return map[string]Reducer{
		contract.ToolSearchPharmacies:  reduceSearchPharmacies,
		contract.ToolCheckAvailability: reduceCheckAvailability,
		contract.ToolCallPharmacy:      reduceCallPharmacy,

		contract.ToolUpdatePreferences: reduceUpdatePreferences,
		contract.ToolGenerateItinerary: reduceGenerateItinerary,
		contract.ToolModifyItinerary:   reduceModifyItinerary,
		contract.ToolSearchActivities:  reduceSearchActivities,

		contract.ActionSelectPharmacy: reduceSelectPharmacy,
	}
}
