package state

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMedicineStageAdvanceIsMonotonic(t *testing.T) {
	t.Parallel()

	if got := MedicineCompleted.Advance(MedicineSearching); got != MedicineCompleted {
		t.Fatalf("Advance() = %v, want stage to stay at completed", got)
	}
	if got := MedicineSearching.Advance(MedicineFoundPharmacies); got != MedicineFoundPharmacies {
		t.Fatalf("Advance() = %v, want found_pharmacies", got)
	}
	if got := MedicineIdle.Advance(MedicineIdle); got != MedicineIdle {
		t.Fatalf("Advance() = %v, want idle", got)
	}
}

func TestTravelStageAdvanceIsMonotonic(t *testing.T) {
	t.Parallel()

	if got := TravelCompleted.Advance(TravelGatheringPreferences); got != TravelCompleted {
		t.Fatalf("Advance() = %v, want stage to stay at completed", got)
	}
	if got := TravelPlanning.Advance(TravelCompleted); got != TravelCompleted {
		t.Fatalf("Advance() = %v, want completed", got)
	}
	if got := TravelCompleted.Advance(TravelRefining); got != TravelCompleted {
		t.Fatalf("Advance() = %v, want completed to outrank refining", got)
	}
}

func TestUnifiedStateCloneIsDeep(t *testing.T) {
	t.Parallel()

	stock := true
	price := 4.5
	s := NewUnifiedState()
	s.Medicine.Pharmacies = []Pharmacy{{ID: "pharmacy-0", Name: "CVS", HasStock: &stock, Price: &price}}
	s.Medicine.CallResult = &CallResult{Available: true, Transcript: []string{"Pharmacist: hi"}}
	s.Travel.Preferences.Interests = []string{"food"}
	s.Travel.Itinerary = []DayPlan{{Day: 1, Activities: []Activity{{ID: "day1-act1", Title: "Walk"}}}}

	c := s.Clone()
	c.Medicine.Pharmacies[0].Name = "changed"
	*c.Medicine.Pharmacies[0].HasStock = false
	c.Medicine.CallResult.Transcript[0] = "changed"
	c.Travel.Preferences.Interests[0] = "changed"
	c.Travel.Itinerary[0].Activities[0].Title = "changed"

	if s.Medicine.Pharmacies[0].Name != "CVS" {
		t.Fatal("clone shares the pharmacy slice")
	}
	if !*s.Medicine.Pharmacies[0].HasStock {
		t.Fatal("clone shares the HasStock pointer")
	}
	if s.Medicine.CallResult.Transcript[0] != "Pharmacist: hi" {
		t.Fatal("clone shares the transcript slice")
	}
	if s.Travel.Preferences.Interests[0] != "food" {
		t.Fatal("clone shares the interests slice")
	}
	if s.Travel.Itinerary[0].Activities[0].Title != "Walk" {
		t.Fatal("clone shares the activities slice")
	}
}

func TestUnifiedStateJSONRoundTrip(t *testing.T) {
	t.Parallel()

	stock := false
	s := NewUnifiedState()
	s.ActiveTask = TaskMedicine
	s.Medicine.Stage = MedicineFoundPharmacies
	s.Medicine.MedicineName = "paracetamol"
	s.Medicine.Pharmacies = []Pharmacy{{ID: "pharmacy-0", Name: "CVS", Rating: 4.0, HasStock: &stock}}
	s.Travel.Stage = TravelGatheringPreferences
	s.Travel.Preferences = TravelPreferences{Destination: "Bali", Interests: []string{"food", "culture"}}

	doc, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back UnifiedState
	if err := json.Unmarshal(doc, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(s, back) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, s)
	}
}

func TestPreferencesApplyKeepsKnownFields(t *testing.T) {
	t.Parallel()

	p := TravelPreferences{Destination: "Bali", Budget: BudgetModerate, Interests: []string{"food"}}

	got := p.Apply(PreferencePatch{StartDate: "2026-10-01", Travelers: 2})
	if got.Destination != "Bali" {
		t.Fatalf("Destination = %q, patch without destination must keep prior value", got.Destination)
	}
	if got.Budget != BudgetModerate {
		t.Fatalf("Budget = %q, want moderate", got.Budget)
	}
	if got.StartDate != "2026-10-01" || got.Travelers != 2 {
		t.Fatalf("patch fields not applied: %+v", got)
	}
	if len(got.Interests) != 1 || got.Interests[0] != "food" {
		t.Fatalf("Interests = %v, want prior value", got.Interests)
	}
}

func TestPreferencesApplyDropsInvalidEnums(t *testing.T) {
	t.Parallel()

	p := TravelPreferences{Budget: BudgetLow, Pace: PaceRelaxed}
	got := p.Apply(PreferencePatch{Budget: "extravagant", Pace: "frantic"})
	if got.Budget != BudgetLow {
		t.Fatalf("Budget = %q, invalid patch value must be dropped", got.Budget)
	}
	if got.Pace != PaceRelaxed {
		t.Fatalf("Pace = %q, invalid patch value must be dropped", got.Pace)
	}
}

func TestSelectedPharmacyDanglingReference(t *testing.T) {
	t.Parallel()

	m := MedicineState{
		Pharmacies:         []Pharmacy{{ID: "pharmacy-0", Name: "CVS"}},
		SelectedPharmacyID: "pharmacy-0",
	}
	if p, ok := m.SelectedPharmacy(); !ok || p.Name != "CVS" {
		t.Fatalf("SelectedPharmacy() = %+v, %v; want CVS", p, ok)
	}

	// A wholesale replacement may leave the selection dangling; it surfaces
	// as not-found rather than a stale entry.
	m.Pharmacies = []Pharmacy{{ID: "pharmacy-1", Name: "Walgreens"}}
	if _, ok := m.SelectedPharmacy(); ok {
		t.Fatal("SelectedPharmacy() resolved a dangling reference")
	}
}

func TestItineraryCost(t *testing.T) {
	t.Parallel()

	days := []DayPlan{
		{Day: 1, Activities: []Activity{{Cost: 10}, {Cost: 2.5}}},
		{Day: 2, Activities: []Activity{{Cost: 7.5}}},
	}
	if got := ItineraryCost(days); got != 20 {
		t.Fatalf("ItineraryCost() = %v, want 20", got)
	}
	if got := ItineraryCost(nil); got != 0 {
		t.Fatalf("ItineraryCost(nil) = %v, want 0", got)
	}
}
