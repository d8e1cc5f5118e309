package agentsim

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

// waitForState polls the snapshot until pred holds or the budget runs out.
// Dispatch is asynchronous, so scenario steps that read back panel state have
// to wait for the engine loop to catch up.
func (s *Simulator) waitForState(ctx context.Context, pred func(statex.UnifiedState) bool) bool {
	deadline := time.NewTimer(2 * time.Second)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		if pred(s.states.Snapshot()) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-tick.C:
		}
	}
}

// RunMedicineScenario walks the medicine flow end to end: search, check the
// nearest result, then an approved simulated call.
func (s *Simulator) RunMedicineScenario(ctx context.Context, medicine, location string) error {
	res, err := s.SearchPharmacies(ctx, contract.SearchPharmaciesArgs{
		MedicineName: medicine,
		Location:     location,
	})
	if err != nil {
		return err
	}
	if len(res.Pharmacies) == 0 {
		return fmt.Errorf("no pharmacies found near %s", location)
	}
	first := res.Pharmacies[0]

	firstID := first.ID
	if s.waitForState(ctx, func(u statex.UnifiedState) bool { return len(u.Medicine.Pharmacies) > 0 }) {
		firstID = s.states.Snapshot().Medicine.Pharmacies[0].ID
	}

	if _, err := s.CheckAvailability(ctx, contract.CheckAvailabilityArgs{
		PharmacyID:   firstID,
		PharmacyName: first.Name,
		MedicineName: medicine,
		Location:     location,
	}); err != nil {
		return err
	}

	resolver, err := s.RequestCallConfirmation(ctx, contract.CallPharmacyArgs{
		PharmacyID:     firstID,
		PharmacyName:   first.Name,
		MedicineName:   medicine,
		QuantityNeeded: 2,
	})
	if err != nil {
		return err
	}
	log.Info().Str("description", resolver.Request().Description).Msg("demo: auto-approving call confirmation")
	return resolver.Approve()
}

// RunTravelScenario walks the travel flow: preferences, itinerary, a small
// edit and one activity search.
func (s *Simulator) RunTravelScenario(ctx context.Context, destination, startDate, endDate string) error {
	if err := s.UpdatePreferences(ctx, contract.UpdatePreferencesArgs{
		Destination: destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      "moderate",
		Interests:   "food, culture",
		Pace:        "moderate",
		Travelers:   2,
	}); err != nil {
		return err
	}

	if _, err := s.GenerateItinerary(ctx, contract.GenerateItineraryArgs{
		Destination: destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      "moderate",
		Interests:   "food, culture",
		Pace:        "moderate",
	}); err != nil {
		return err
	}
	if !s.waitForState(ctx, func(u statex.UnifiedState) bool { return len(u.Travel.Itinerary) > 0 }) {
		return fmt.Errorf("itinerary for %s never reached the panel", destination)
	}

	idx := 0
	if _, err := s.ModifyItinerary(ctx, contract.ModifyItineraryArgs{
		Day:                    1,
		Action:                 "replace",
		ActivityIndex:          &idx,
		NewActivityTitle:       "Sunrise walk",
		NewActivityDescription: "Easy start before the day picks up.",
		NewActivityTime:        "7:00 AM",
	}); err != nil {
		return err
	}

	_, err := s.SearchActivities(ctx, contract.SearchActivitiesArgs{
		Destination:  destination,
		ActivityType: "food",
		Budget:       "moderate",
	})
	return err
}
