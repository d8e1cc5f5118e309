// Package suggest derives the one-line hint shown next to the chat input.
package suggest

import (
	"fmt"

	statex "github.com/pokus-ai/taskpanel/engine/state"
)

// Hint selects a templated prompt hint from the current panel state. The
// function is pure and cheap, so callers recompute it on every state change.
func Hint(s statex.UnifiedState) string {
	switch s.ActiveTask {
	case statex.TaskMedicine:
		if n := len(s.Medicine.Pharmacies); n > 0 {
			return fmt.Sprintf("Found %d pharmacies. Ask me to check availability or call one for you.", n)
		}
		if s.Medicine.MedicineName != "" {
			return fmt.Sprintf("Looking for %s. Tell me a location to search nearby pharmacies.", s.Medicine.MedicineName)
		}
		return "Tell me which medicine you need and where you are."

	case statex.TaskTravel:
		if len(s.Travel.Itinerary) > 0 {
			return fmt.Sprintf("Your %d-day itinerary is ready. Ask me to adjust days or activities.", len(s.Travel.Itinerary))
		}
		if dest := s.Travel.Preferences.Destination; dest != "" {
			return fmt.Sprintf("Planning a trip to %s. Share dates, budget or interests to refine it.", dest)
		}
		return "Tell me where you want to go and I will plan the trip."
	}
	return "Ask me to find a medicine nearby or plan a trip."
}
