package agentsim

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
	"github.com/pokus-ai/taskpanel/pkg/tavily"
)

const maxItineraryDays = 14

// UpdatePreferences records gathered preferences. The work is instant, so a
// single complete event carries the args straight to the reducer.
func (s *Simulator) UpdatePreferences(ctx context.Context, args contract.UpdatePreferencesArgs) error {
	rec := contract.Record(args)
	s.emit(contract.ToolUpdatePreferences, contract.PhaseComplete, rec, map[string]any{
		"success": true,
		"message": "Preferences updated",
	})
	return nil
}

// GenerateItinerary builds a day-by-day plan, from web research when
// available and from a deterministic builder otherwise.
func (s *Simulator) GenerateItinerary(ctx context.Context, args contract.GenerateItineraryArgs) (contract.GenerateItineraryResult, error) {
	rec := s.emitPending(contract.ToolGenerateItinerary, args)

	start, numDays := s.tripWindow(args.StartDate, args.EndDate)

	res, err := s.generateItinerary(ctx, args, start, numDays)
	if err != nil {
		log.Warn().Err(err).Str("destination", args.Destination).Msg("agentsim: itinerary synthesis failed")
		s.emit(contract.ToolGenerateItinerary, contract.PhaseComplete, rec, map[string]any{
			"error":   true,
			"message": fmt.Sprintf("Could not create an itinerary for %s: %v", args.Destination, err),
		})
		return contract.GenerateItineraryResult{}, err
	}

	s.emitComplete(contract.ToolGenerateItinerary, rec, res)
	return res, nil
}

func (s *Simulator) tripWindow(startDate, endDate string) (time.Time, int) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		start = s.now()
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		end = start.AddDate(0, 0, 5)
	}
	numDays := int(end.Sub(start).Hours() / 24)
	if numDays < 1 {
		numDays = 1
	}
	if numDays > maxItineraryDays {
		numDays = maxItineraryDays
	}
	return start, numDays
}

func (s *Simulator) generateItinerary(ctx context.Context, args contract.GenerateItineraryArgs, start time.Time, numDays int) (contract.GenerateItineraryResult, error) {
	var days []contract.DayPlanResult
	var totalCost float64

	if s.search != nil && s.itineraryRunner != nil {
		web, err := s.search.Search(ctx, tavily.SearchRequest{
			Query:         fmt.Sprintf("top attractions, food and activities in %s for travelers interested in %s", args.Destination, args.Interests),
			SearchDepth:   "advanced",
			MaxResults:    5,
			IncludeAnswer: true,
		})
		if err != nil {
			return contract.GenerateItineraryResult{}, err
		}

		var dates []string
		for i := 0; i < numDays; i++ {
			d := start.AddDate(0, 0, i)
			dates = append(dates, fmt.Sprintf("Day %d: %s (%s)", i+1, d.Format("2006-01-02"), d.Weekday()))
		}
		input := fmt.Sprintf(
			"DESTINATION RESEARCH:\n%s\n\nTRIP DETAILS:\n- Destination: %s\n- Dates:\n%s\n- Budget: %s\n- Pace: %s\n- Interests: %s\n\nCreate exactly %d days.",
			web.Answer, args.Destination, strings.Join(dates, "\n"), args.Budget, args.Pace, args.Interests, numDays,
		)

		synth, err := s.itineraryRunner.Invoke(ctx, map[string]any{"input": input})
		if err != nil {
			return contract.GenerateItineraryResult{}, err
		}
		days = synth.Itinerary
		totalCost = synth.TotalCost
	} else {
		days = s.fallbackItinerary(args, start, numDays)
	}

	return contract.GenerateItineraryResult{
		Success:     true,
		Destination: args.Destination,
		NumDays:     numDays,
		Itinerary:   days,
		TotalCost:   totalCost,
		Tips: []string{
			"Book popular attractions in advance",
			"Consider travel insurance for your trip",
			"Download offline maps before you go",
			"Check visa requirements for your destination",
		},
		Message: fmt.Sprintf("Created a %d-day itinerary for %s. Check the side panel for details.", numDays, args.Destination),
	}, nil
}

// fallbackItinerary produces an offline plan with budget-tiered costs and a
// pace-tiered activity count.
func (s *Simulator) fallbackItinerary(args contract.GenerateItineraryArgs, start time.Time, numDays int) []contract.DayPlanResult {
	var costScale float64
	switch statex.BudgetLevel(args.Budget) {
	case statex.BudgetLow:
		costScale = 10
	case statex.BudgetLuxury:
		costScale = 80
	default:
		costScale = 30
	}

	perDay := 3
	switch statex.PaceLevel(args.Pace) {
	case statex.PaceRelaxed:
		perDay = 2
	case statex.PacePacked:
		perDay = 5
	}

	themes := []string{"Arrival & Exploration", "Local Highlights", "Culture & History", "Nature Day", "Food & Markets", "Hidden Gems", "Day Trip", "Farewell"}
	slots := []string{"9:00 AM", "12:00 PM", "2:30 PM", "5:00 PM", "7:30 PM"}
	kinds := []string{"attraction", "food", "activity", "attraction", "food"}
	titles := []string{"Attraction", "Food", "Activity", "Attraction", "Food"}

	days := make([]contract.DayPlanResult, 0, numDays)
	for d := 0; d < numDays; d++ {
		day := contract.DayPlanResult{
			Day:   d + 1,
			Date:  start.AddDate(0, 0, d).Format("2006-01-02"),
			Theme: themes[d%len(themes)],
		}
		for a := 0; a < perDay; a++ {
			day.Activities = append(day.Activities, contract.ActivityResult{
				Time:        slots[a],
				Title:       fmt.Sprintf("%s in %s", titles[a], args.Destination),
				Description: fmt.Sprintf("Suggested %s stop for day %d.", kinds[a], d+1),
				Duration:    "2 hours",
				Type:        kinds[a],
				Cost:        round2(costScale * (0.5 + s.rng.Float64())),
				Location:    args.Destination,
			})
		}
		days = append(days, day)
	}
	return days
}

// ModifyItinerary applies one remove/add/replace edit to the current panel
// itinerary and emits the full updated plan.
func (s *Simulator) ModifyItinerary(ctx context.Context, args contract.ModifyItineraryArgs) (contract.ModifyItineraryResult, error) {
	rec := s.emitPending(contract.ToolModifyItinerary, args)

	snap := s.states.Snapshot()
	days := statex.CloneItinerary(snap.Travel.Itinerary)

	dayIdx := -1
	for i := range days {
		if days[i].Day == args.Day {
			dayIdx = i
			break
		}
	}
	if dayIdx < 0 {
		res := contract.ModifyItineraryResult{Message: fmt.Sprintf("Day %d is not in the itinerary", args.Day)}
		s.emit(contract.ToolModifyItinerary, contract.PhaseComplete, rec, map[string]any{
			"error":   true,
			"message": res.Message,
		})
		return res, fmt.Errorf("itinerary has no day %d", args.Day)
	}

	day := &days[dayIdx]
	switch args.Action {
	case "remove":
		if args.ActivityIndex == nil || *args.ActivityIndex < 0 || *args.ActivityIndex >= len(day.Activities) {
			return s.modifyFailed(rec, "activity_index is out of range")
		}
		i := *args.ActivityIndex
		day.Activities = append(day.Activities[:i], day.Activities[i+1:]...)

	case "add":
		if args.NewActivityTitle == "" {
			return s.modifyFailed(rec, "new_activity_title is required for add")
		}
		day.Activities = append(day.Activities, statex.Activity{
			ID:          fmt.Sprintf("day%d-act%d", day.Day, len(day.Activities)+1),
			Time:        args.NewActivityTime,
			Title:       args.NewActivityTitle,
			Description: args.NewActivityDescription,
			Type:        statex.ActivityGeneric,
		})

	case "replace":
		if args.ActivityIndex == nil || *args.ActivityIndex < 0 || *args.ActivityIndex >= len(day.Activities) {
			return s.modifyFailed(rec, "activity_index is out of range")
		}
		if args.NewActivityTitle == "" {
			return s.modifyFailed(rec, "new_activity_title is required for replace")
		}
		i := *args.ActivityIndex
		day.Activities[i] = statex.Activity{
			ID:          day.Activities[i].ID,
			Time:        args.NewActivityTime,
			Title:       args.NewActivityTitle,
			Description: args.NewActivityDescription,
			Type:        statex.ActivityGeneric,
		}

	default:
		return s.modifyFailed(rec, fmt.Sprintf("unknown action: %s", args.Action))
	}

	total := statex.ItineraryCost(days)
	res := contract.ModifyItineraryResult{
		Success:   true,
		Itinerary: days,
		TotalCost: &total,
		Message:   fmt.Sprintf("Updated day %d", args.Day),
	}
	s.emitComplete(contract.ToolModifyItinerary, rec, res)
	return res, nil
}

func (s *Simulator) modifyFailed(rec map[string]any, msg string) (contract.ModifyItineraryResult, error) {
	s.emit(contract.ToolModifyItinerary, contract.PhaseComplete, rec, map[string]any{
		"error":   true,
		"message": msg,
	})
	return contract.ModifyItineraryResult{Message: msg}, fmt.Errorf("modify itinerary: %s", msg)
}

// SearchActivities returns a chat-surface recommendation text. It prefers
// Tavily's synthesized answer, then an LLM-written summary, then a canned
// line.
func (s *Simulator) SearchActivities(ctx context.Context, args contract.SearchActivitiesArgs) (contract.SearchActivitiesResult, error) {
	rec := s.emitPending(contract.ToolSearchActivities, args)

	recommendations, err := s.activityRecommendations(ctx, args)
	if err != nil {
		log.Warn().Err(err).Str("destination", args.Destination).Msg("agentsim: activity search failed")
		s.emit(contract.ToolSearchActivities, contract.PhaseComplete, rec, map[string]any{
			"error":   true,
			"message": fmt.Sprintf("Could not search for %s activities in %s: %v", args.ActivityType, args.Destination, err),
		})
		return contract.SearchActivitiesResult{}, err
	}

	res := contract.SearchActivitiesResult{
		Success:         true,
		Destination:     args.Destination,
		ActivityType:    args.ActivityType,
		Recommendations: recommendations,
		Message:         fmt.Sprintf("Found %s recommendations in %s", args.ActivityType, args.Destination),
	}
	s.emitComplete(contract.ToolSearchActivities, rec, res)
	return res, nil
}

func (s *Simulator) activityRecommendations(ctx context.Context, args contract.SearchActivitiesArgs) (string, error) {
	if s.search != nil {
		web, err := s.search.Search(ctx, tavily.SearchRequest{
			Query:         fmt.Sprintf("best %s activities in %s on a %s budget", args.ActivityType, args.Destination, args.Budget),
			SearchDepth:   "basic",
			MaxResults:    5,
			IncludeAnswer: true,
		})
		if err != nil {
			return "", err
		}
		if web.Answer != "" {
			return web.Answer, nil
		}
	}

	if s.recClient != nil {
		completion, err := s.recClient.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
			Model: openaisdk.ChatModel(s.recModel),
			Messages: []openaisdk.ChatCompletionMessageParamUnion{
				openaisdk.SystemMessage("You recommend travel activities. Answer with a short list of concrete, real places."),
				openaisdk.UserMessage(fmt.Sprintf("Recommend %s activities in %s for a %s budget.", args.ActivityType, args.Destination, args.Budget)),
			},
		})
		if err != nil {
			return "", err
		}
		if len(completion.Choices) > 0 {
			return completion.Choices[0].Message.Content, nil
		}
	}

	return fmt.Sprintf("Popular %s options in %s include the city's best-known spots; ask for a full itinerary to see them scheduled.", args.ActivityType, args.Destination), nil
}
