package dispatch

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

func applyAll(t *testing.T, events ...contract.ToolCallEvent) statex.UnifiedState {
	t.Helper()
	reducers := defaultReducers()
	s := statex.NewUnifiedState()
	for _, ev := range events {
		reduce, ok := reducers[ev.Tool]
		if !ok {
			t.Fatalf("no reducer for tool %q", ev.Tool)
		}
		s = reduce(s.Clone(), ev)
	}
	return s
}

func searchPending() contract.ToolCallEvent {
	return contract.ToolCallEvent{
		Tool:  contract.ToolSearchPharmacies,
		Phase: contract.PhasePending,
		Args:  map[string]any{"medicine_name": "paracetamol", "location": "SF"},
	}
}

func searchComplete() contract.ToolCallEvent {
	return contract.ToolCallEvent{
		Tool:  contract.ToolSearchPharmacies,
		Phase: contract.PhaseComplete,
		Result: map[string]any{
			"success": true,
			"pharmacies": []any{
				map[string]any{"name": "CVS", "address": "123 Main"},
			},
		},
	}
}

func TestSearchPharmaciesScenario(t *testing.T) {
	t.Parallel()

	s := applyAll(t, searchPending(), searchComplete())

	if s.ActiveTask != statex.TaskMedicine {
		t.Fatalf("ActiveTask = %q, want medicine", s.ActiveTask)
	}
	if s.Medicine.Stage != statex.MedicineFoundPharmacies {
		t.Fatalf("Stage = %q, want found_pharmacies", s.Medicine.Stage)
	}
	if s.Medicine.MedicineName != "paracetamol" || s.Medicine.Location != "SF" {
		t.Fatalf("args not captured: %+v", s.Medicine)
	}
	if len(s.Medicine.Pharmacies) != 1 {
		t.Fatalf("pharmacies = %d, want 1", len(s.Medicine.Pharmacies))
	}
	p := s.Medicine.Pharmacies[0]
	if p.ID != "pharmacy-0" || p.Name != "CVS" || p.Address != "123 Main" {
		t.Fatalf("normalized pharmacy = %+v", p)
	}
	if p.HasStock != nil {
		t.Fatalf("HasStock = %v, want unknown", *p.HasStock)
	}
	if p.Rating != 4.0 {
		t.Fatalf("Rating = %v, want default 4.0", p.Rating)
	}
}

func TestSearchPharmaciesFailureLeavesListUntouched(t *testing.T) {
	t.Parallel()

	s := applyAll(t, searchPending(), searchComplete(), contract.ToolCallEvent{
		Tool:   contract.ToolSearchPharmacies,
		Phase:  contract.PhaseComplete,
		Result: map[string]any{"error": true, "message": "Tavily unavailable"},
	})

	if len(s.Medicine.Pharmacies) != 1 {
		t.Fatalf("pharmacies = %d, failed search must not clear results", len(s.Medicine.Pharmacies))
	}
	if s.Medicine.Stage != statex.MedicineFoundPharmacies {
		t.Fatalf("Stage = %q, want found_pharmacies", s.Medicine.Stage)
	}
}

func TestSearchPharmaciesCompleteWithoutPending(t *testing.T) {
	t.Parallel()

	s := applyAll(t, searchComplete())
	if s.Medicine.Stage != statex.MedicineFoundPharmacies {
		t.Fatalf("Stage = %q, complete without pending must still apply", s.Medicine.Stage)
	}
}

func TestCheckAvailabilityPatchesOneEntry(t *testing.T) {
	t.Parallel()

	price := 3.2
	s := applyAll(t,
		contract.ToolCallEvent{
			Tool:  contract.ToolSearchPharmacies,
			Phase: contract.PhaseComplete,
			Result: map[string]any{
				"success": true,
				"pharmacies": []any{
					map[string]any{"name": "CVS"},
					map[string]any{"name": "Walgreens"},
				},
			},
		},
		contract.ToolCallEvent{
			Tool:  contract.ToolCheckAvailability,
			Phase: contract.PhaseComplete,
			Result: map[string]any{
				"pharmacy_name":  "Walgreens",
				"in_stock":       true,
				"price_per_unit": price,
			},
		},
	)

	if s.Medicine.Stage != statex.MedicineCheckingAvailability {
		t.Fatalf("Stage = %q, want checking_availability", s.Medicine.Stage)
	}
	if s.Medicine.Pharmacies[0].HasStock != nil {
		t.Fatal("untargeted pharmacy was patched")
	}
	w := s.Medicine.Pharmacies[1]
	if w.HasStock == nil || !*w.HasStock {
		t.Fatalf("HasStock = %v, want true", w.HasStock)
	}
	if w.Price == nil || *w.Price != price {
		t.Fatalf("Price = %v, want %v", w.Price, price)
	}
}

func TestCallPharmacyScenario(t *testing.T) {
	t.Parallel()

	s := applyAll(t, searchPending(), searchComplete(), contract.ToolCallEvent{
		Tool:  contract.ToolCallPharmacy,
		Phase: contract.PhaseComplete,
		Args:  map[string]any{"pharmacy_name": "CVS"},
		Result: map[string]any{
			"available":  true,
			"quantity":   10,
			"price":      4.5,
			"transcript": []any{"Pharmacist: hi"},
		},
	})

	if s.Medicine.Stage != statex.MedicineCompleted {
		t.Fatalf("Stage = %q, want completed", s.Medicine.Stage)
	}
	p, ok := s.Medicine.SelectedPharmacy()
	if !ok || p.Name != "CVS" {
		t.Fatalf("SelectedPharmacy() = %+v, %v; want CVS", p, ok)
	}
	want := &statex.CallResult{Available: true, Quantity: 10, Price: 4.5, Transcript: []string{"Pharmacist: hi"}}
	if !reflect.DeepEqual(s.Medicine.CallResult, want) {
		t.Fatalf("CallResult = %+v, want %+v", s.Medicine.CallResult, want)
	}
}

func TestUpdatePreferencesScenario(t *testing.T) {
	t.Parallel()

	s := applyAll(t, contract.ToolCallEvent{
		Tool:  contract.ToolUpdatePreferences,
		Phase: contract.PhaseComplete,
		Args:  map[string]any{"destination": "Bali", "interests": "food, culture"},
	})

	if s.ActiveTask != statex.TaskTravel {
		t.Fatalf("ActiveTask = %q, want travel", s.ActiveTask)
	}
	if s.Travel.Stage != statex.TravelGatheringPreferences {
		t.Fatalf("Stage = %q, want gathering_preferences", s.Travel.Stage)
	}
	if !reflect.DeepEqual(s.Travel.Preferences.Interests, []string{"food", "culture"}) {
		t.Fatalf("Interests = %v, want [food culture]", s.Travel.Preferences.Interests)
	}
}

func TestUpdatePreferencesInterestsAsList(t *testing.T) {
	t.Parallel()

	s := applyAll(t, contract.ToolCallEvent{
		Tool:  contract.ToolUpdatePreferences,
		Phase: contract.PhaseComplete,
		Args:  map[string]any{"interests": []any{" food ", "", "nature"}},
	})
	if !reflect.DeepEqual(s.Travel.Preferences.Interests, []string{"food", "nature"}) {
		t.Fatalf("Interests = %v, want [food nature]", s.Travel.Preferences.Interests)
	}
}

func TestUpdatePreferencesNeverDropsKnownFields(t *testing.T) {
	t.Parallel()

	s := applyAll(t,
		contract.ToolCallEvent{
			Tool:  contract.ToolUpdatePreferences,
			Phase: contract.PhaseComplete,
			Args:  map[string]any{"destination": "Bali", "budget": "moderate"},
		},
		contract.ToolCallEvent{
			Tool:  contract.ToolUpdatePreferences,
			Phase: contract.PhaseComplete,
			Args:  map[string]any{"travelers": 2},
		},
	)
	if s.Travel.Preferences.Destination != "Bali" || s.Travel.Preferences.Budget != statex.BudgetModerate {
		t.Fatalf("later patch dropped earlier fields: %+v", s.Travel.Preferences)
	}
	if s.Travel.Preferences.Travelers != 2 {
		t.Fatalf("Travelers = %d, want 2", s.Travel.Preferences.Travelers)
	}
}

func TestGenerateItineraryScenario(t *testing.T) {
	t.Parallel()

	pending := contract.ToolCallEvent{
		Tool:  contract.ToolGenerateItinerary,
		Phase: contract.PhasePending,
		Args:  map[string]any{"destination": "Bali"},
	}
	complete := contract.ToolCallEvent{
		Tool:  contract.ToolGenerateItinerary,
		Phase: contract.PhaseComplete,
		Result: map[string]any{
			"success": true,
			"itinerary": []any{
				map[string]any{
					"activities": []any{
						map[string]any{"title": "Beach"},
						map[string]any{"title": "Dinner", "cost": 30, "type": "food"},
					},
				},
			},
		},
	}

	mid := applyAll(t, pending)
	if mid.Travel.Stage != statex.TravelPlanning || mid.Travel.Progress != 50 {
		t.Fatalf("after pending: stage=%q progress=%d, want planning/50", mid.Travel.Stage, mid.Travel.Progress)
	}

	s := applyAll(t, pending, complete)
	if s.Travel.Stage != statex.TravelCompleted || s.Travel.Progress != 100 {
		t.Fatalf("after complete: stage=%q progress=%d, want completed/100", s.Travel.Stage, s.Travel.Progress)
	}
	if len(s.Travel.Itinerary) != 1 || s.Travel.Itinerary[0].Day != 1 {
		t.Fatalf("Itinerary = %+v, want one day numbered 1", s.Travel.Itinerary)
	}
	acts := s.Travel.Itinerary[0].Activities
	if acts[0].ID != "day1-act1" || acts[0].Type != statex.ActivityGeneric || acts[0].Cost != 0 {
		t.Fatalf("activity defaults wrong: %+v", acts[0])
	}
	if s.Travel.TotalCost != 30 {
		t.Fatalf("TotalCost = %v, want summed 30", s.Travel.TotalCost)
	}
}

func TestModifyItineraryReplacesWholesale(t *testing.T) {
	t.Parallel()

	s := applyAll(t, contract.ToolCallEvent{
		Tool:  contract.ToolModifyItinerary,
		Phase: contract.PhaseComplete,
		Result: map[string]any{
			"success": true,
			"itinerary": []any{
				map[string]any{
					"day": 1,
					"activities": []any{
						map[string]any{"id": "day1-act1", "title": "Museum", "type": "attraction", "cost": 12.0},
					},
				},
			},
		},
	})

	if len(s.Travel.Itinerary) != 1 || s.Travel.Itinerary[0].Activities[0].Title != "Museum" {
		t.Fatalf("Itinerary = %+v", s.Travel.Itinerary)
	}
	if s.Travel.TotalCost != 12 {
		t.Fatalf("TotalCost = %v, want 12", s.Travel.TotalCost)
	}
	if s.Travel.Stage != statex.TravelCompleted {
		t.Fatalf("Stage = %q, want completed", s.Travel.Stage)
	}
}

func TestActiveTaskLastWriteWins(t *testing.T) {
	t.Parallel()

	s := applyAll(t,
		searchPending(),
		contract.ToolCallEvent{
			Tool:  contract.ToolUpdatePreferences,
			Phase: contract.PhaseComplete,
			Args:  map[string]any{"destination": "Bali"},
		},
		searchComplete(),
	)

	if s.ActiveTask != statex.TaskMedicine {
		t.Fatalf("ActiveTask = %q, want medicine after the later medicine event", s.ActiveTask)
	}
	if s.Travel.Preferences.Destination != "Bali" {
		t.Fatal("travel sub-state corrupted by medicine events")
	}
	if len(s.Medicine.Pharmacies) != 1 {
		t.Fatal("medicine sub-state corrupted by travel events")
	}
}

func TestReducersAreIdempotentOnComplete(t *testing.T) {
	t.Parallel()

	completes := []contract.ToolCallEvent{
		searchComplete(),
		{
			Tool:   contract.ToolCheckAvailability,
			Phase:  contract.PhaseComplete,
			Result: map[string]any{"pharmacy_name": "CVS", "in_stock": true},
		},
		{
			Tool:   contract.ToolCallPharmacy,
			Phase:  contract.PhaseComplete,
			Args:   map[string]any{"pharmacy_name": "CVS"},
			Result: map[string]any{"available": true, "quantity": 10, "price": 4.5},
		},
		{
			Tool:  contract.ToolUpdatePreferences,
			Phase: contract.PhaseComplete,
			Args:  map[string]any{"destination": "Bali"},
		},
		{
			Tool:  contract.ToolGenerateItinerary,
			Phase: contract.PhaseComplete,
			Result: map[string]any{
				"success": true,
				"itinerary": []any{
					map[string]any{"activities": []any{map[string]any{"title": "Beach", "cost": 5.0}}},
				},
			},
		},
		{
			Tool:  contract.ToolModifyItinerary,
			Phase: contract.PhaseComplete,
			Result: map[string]any{
				"success":   true,
				"itinerary": []any{map[string]any{"day": 1}},
			},
		},
	}

	reducers := defaultReducers()
	for _, ev := range completes {
		reduce := reducers[ev.Tool]
		base := applyAll(t, searchComplete())

		once := reduce(base.Clone(), ev)
		twice := reduce(once.Clone(), ev)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("tool %s: double apply diverged:\nonce  %+v\ntwice %+v", ev.Tool, once, twice)
		}
	}
}

func TestReachableStatesSurviveStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := applyAll(t,
		searchPending(),
		searchComplete(),
		contract.ToolCallEvent{
			Tool:   contract.ToolCheckAvailability,
			Phase:  contract.PhaseComplete,
			Result: map[string]any{"pharmacy_name": "CVS", "in_stock": true, "price_per_unit": 3.5},
		},
		contract.ToolCallEvent{
			Tool:   contract.ToolCallPharmacy,
			Phase:  contract.PhaseComplete,
			Args:   map[string]any{"pharmacy_name": "CVS"},
			Result: map[string]any{"available": true, "quantity": 10, "price": 4.5, "transcript": []any{"Pharmacist: hi"}},
		},
		contract.ToolCallEvent{
			Tool:  contract.ToolUpdatePreferences,
			Phase: contract.PhaseComplete,
			Args:  map[string]any{"destination": "Bali", "interests": "food, culture"},
		},
	)

	doc, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back statex.UnifiedState
	if err := json.Unmarshal(doc, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(s, back) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, s)
	}
}
