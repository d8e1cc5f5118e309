package action

import (
	"fmt"
	"strings"

	statex "github.com/pokus-ai/taskpanel/engine/state"
)

// BuildItineraryExport renders the travel state as a plain-text document.
// The output is handed to the frontend for download; it carries no panel
// markup so it stays readable anywhere.
func BuildItineraryExport(title string, t statex.TravelState) string {
	var b strings.Builder

	if title == "" {
		title = "Trip Itinerary"
		if t.Preferences.Destination != "" {
			title = "Trip to " + t.Preferences.Destination
		}
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	if t.Preferences.StartDate != "" || t.Preferences.EndDate != "" {
		fmt.Fprintf(&b, "Dates: %s to %s\n", t.Preferences.StartDate, t.Preferences.EndDate)
	}
	if t.Preferences.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", t.Preferences.Budget)
	}
	if len(t.Preferences.Interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(t.Preferences.Interests, ", "))
	}
	b.WriteString("\n")

	for _, day := range t.Itinerary {
		header := fmt.Sprintf("Day %d", day.Day)
		if day.Date != "" {
			header += " (" + day.Date + ")"
		}
		if day.Theme != "" {
			header += ": " + day.Theme
		}
		b.WriteString(header + "\n")
		for _, a := range day.Activities {
			line := "  - "
			if a.Time != "" {
				line += a.Time + " "
			}
			line += a.Title
			if a.Cost > 0 {
				line += fmt.Sprintf(" ($%.2f)", a.Cost)
			}
			b.WriteString(line + "\n")
			if a.Location != "" {
				b.WriteString("    " + a.Location + "\n")
			}
		}
		b.WriteString("\n")
	}

	if t.TotalCost > 0 {
		fmt.Fprintf(&b, "Estimated total: $%.2f\n", t.TotalCost)
	}
	return b.String()
}
