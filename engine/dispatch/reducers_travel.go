package dispatch

import (
	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

func reduceUpdatePreferences(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	if ev.Phase != contract.PhaseComplete {
		return s
	}
	s.ActiveTask = statex.TaskTravel
	s.Travel.Stage = s.Travel.Stage.Advance(statex.TravelGatheringPreferences)

	args, err := contract.DecodeArgs[contract.UpdatePreferencesArgs](ev)
	if err != nil {
		log.Warn().Err(err).Msg("reduce: bad update_preferences args")
		return s
	}
	s.Travel.Preferences = s.Travel.Preferences.Apply(statex.PreferencePatch{
		Destination: args.Destination,
		StartDate:   args.StartDate,
		EndDate:     args.EndDate,
		Budget:      args.Budget,
		Interests:   normalizeInterests(args.Interests),
		Pace:        args.Pace,
		Travelers:   args.Travelers,
	})
	return s
}

func reduceGenerateItinerary(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	s.ActiveTask = statex.TaskTravel

	switch ev.Phase {
	case contract.PhasePending:
		s.Travel.Stage = s.Travel.Stage.Advance(statex.TravelPlanning)
		if s.Travel.Progress < 50 {
			s.Travel.Progress = 50
		}
		args, err := contract.DecodeArgs[contract.GenerateItineraryArgs](ev)
		if err != nil {
			return s
		}
		s.Travel.Preferences = s.Travel.Preferences.Apply(statex.PreferencePatch{
			Destination: args.Destination,
			StartDate:   args.StartDate,
			EndDate:     args.EndDate,
			Budget:      args.Budget,
			Pace:        args.Pace,
		})

	case contract.PhaseComplete:
		if !ev.Succeeded() {
			return s
		}
		res, err := contract.DecodeResult[contract.GenerateItineraryResult](ev)
		if err != nil {
			log.Warn().Err(err).Msg("reduce: bad generate_itinerary result")
			return s
		}
		if len(res.Itinerary) == 0 {
			return s
		}
		s.Travel.Itinerary = normalizeItinerary(res.Itinerary)
		if res.TotalCost > 0 {
			s.Travel.TotalCost = res.TotalCost
		} else {
			s.Travel.TotalCost = statex.ItineraryCost(s.Travel.Itinerary)
		}
		s.Travel.Stage = s.Travel.Stage.Advance(statex.TravelCompleted)
		s.Travel.Progress = 100
	}
	return s
}

func reduceModifyItinerary(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	if ev.Phase != contract.PhaseComplete {
		return s
	}
	s.ActiveTask = statex.TaskTravel
	if ev.Failed() {
		return s
	}

	res, err := contract.DecodeResult[contract.ModifyItineraryResult](ev)
	if err != nil {
		log.Warn().Err(err).Msg("reduce: bad modify_itinerary result")
		return s
	}
	if res.Itinerary == nil {
		return s
	}

	// The modification operates on already-normalized days, so the payload is
	// taken wholesale.
	s.Travel.Itinerary = statex.CloneItinerary(res.Itinerary)
	if res.TotalCost != nil {
		s.Travel.TotalCost = *res.TotalCost
	} else {
		s.Travel.TotalCost = statex.ItineraryCost(s.Travel.Itinerary)
	}
	s.Travel.Stage = s.Travel.Stage.Advance(statex.TravelCompleted)
	return s
}

// reduceSearchActivities only marks the travel panel busy; the result is a
// chat-surface recommendation with no panel fields of its own.
func reduceSearchActivities(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	if ev.Phase != contract.PhasePending {
		return s
	}
	s.ActiveTask = statex.TaskTravel
	s.Travel.Stage = s.Travel.Stage.Advance(statex.TravelSearching)
	return s
}
