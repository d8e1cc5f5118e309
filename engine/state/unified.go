package state

// UnifiedState is the persistent source-of-truth for the side panel.
// Both task domains live under one root so a single document round-trips
// through the store:
// - ActiveTask: which panel is in front (last-write-wins across domains)
// - Medicine/Travel: independent sub-state machines; a tool event only ever
//   touches the domain its tool belongs to
type UnifiedState struct {
	ActiveTask TaskType      `json:"active_task"`
	Medicine   MedicineState `json:"medicine"`
	Travel     TravelState   `json:"travel"`
}

type TaskType string

const (
	TaskNone     TaskType = "none"
	TaskMedicine TaskType = "medicine"
	TaskTravel   TaskType = "travel"
)

// NewUnifiedState returns the default document shown before any agent event
// arrives and after an explicit reset.
func NewUnifiedState() UnifiedState {
	return UnifiedState{
		ActiveTask: TaskNone,
		Medicine:   MedicineState{Stage: MedicineIdle},
		Travel:     TravelState{Stage: TravelIdle},
	}
}

// Clone deep-copies the document so reducers and snapshot readers never
// share slices with the engine-owned value.
func (s UnifiedState) Clone() UnifiedState {
	out := s
	out.Medicine = s.Medicine.clone()
	out.Travel = s.Travel.clone()
	return out
}

/* ------------------------------- medicine -------------------------------- */

type MedicineStage string

const (
	MedicineIdle                 MedicineStage = "idle"
	MedicineSearching            MedicineStage = "searching"
	MedicineFoundPharmacies      MedicineStage = "found_pharmacies"
	MedicineCheckingAvailability MedicineStage = "checking_availability"
	MedicineCalling              MedicineStage = "calling"
	MedicineCompleted            MedicineStage = "completed"
)

func (s MedicineStage) rank() int {
	switch s {
	case MedicineSearching:
		return 1
	case MedicineFoundPharmacies:
		return 2
	case MedicineCheckingAvailability:
		return 3
	case MedicineCalling:
		return 4
	case MedicineCompleted:
		return 5
	default:
		return 0
	}
}

// Advance returns the later of s and next. Stages are monotonic within one
// task instance; only an explicit reset moves them backward.
func (s MedicineStage) Advance(next MedicineStage) MedicineStage {
	if next.rank() < s.rank() {
		return s
	}
	return next
}

type MedicineState struct {
	Stage        MedicineStage `json:"stage"`
	MedicineName string        `json:"medicine_name,omitempty"`
	Location     string        `json:"location,omitempty"`
	Pharmacies   []Pharmacy    `json:"pharmacies,omitempty"`

	// SelectedPharmacyID is a weak reference into Pharmacies. It is valid at
	// assignment time and not re-validated after; a wholesale replacement of
	// Pharmacies may leave it dangling, which SelectedPharmacy surfaces as
	// not-found.
	SelectedPharmacyID string      `json:"selected_pharmacy_id,omitempty"`
	CallResult         *CallResult `json:"call_result,omitempty"`
}

// Pharmacy is one normalized search result. HasStock is tri-state: nil means
// availability has not been checked yet.
type Pharmacy struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	DistanceKM float64  `json:"distance_km,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	OpenNow    bool     `json:"open_now,omitempty"`
	Hours      string   `json:"hours,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	HasStock   *bool    `json:"has_stock,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

type CallResult struct {
	Available  bool     `json:"available"`
	Quantity   int      `json:"quantity,omitempty"`
	Price      float64  `json:"price,omitempty"`
	Transcript []string `json:"transcript,omitempty"`
}

// SelectedPharmacy resolves the weak selection reference. The second return
// is false when nothing is selected or the reference dangles.
func (m MedicineState) SelectedPharmacy() (Pharmacy, bool) {
	if m.SelectedPharmacyID == "" {
		return Pharmacy{}, false
	}
	for _, p := range m.Pharmacies {
		if p.ID == m.SelectedPharmacyID {
			return p, true
		}
	}
	return Pharmacy{}, false
}

// PharmacyByName finds a pharmacy by display name. Tool results reference
// pharmacies by name, not id.
func (m MedicineState) PharmacyByName(name string) (Pharmacy, bool) {
	for _, p := range m.Pharmacies {
		if p.Name == name {
			return p, true
		}
	}
	return Pharmacy{}, false
}

func (m MedicineState) clone() MedicineState {
	out := m
	if m.Pharmacies != nil {
		out.Pharmacies = make([]Pharmacy, len(m.Pharmacies))
		for i, p := range m.Pharmacies {
			out.Pharmacies[i] = p.clone()
		}
	}
	if m.CallResult != nil {
		cr := *m.CallResult
		cr.Transcript = append([]string(nil), m.CallResult.Transcript...)
		out.CallResult = &cr
	}
	return out
}

func (p Pharmacy) clone() Pharmacy {
	out := p
	if p.HasStock != nil {
		v := *p.HasStock
		out.HasStock = &v
	}
	if p.Price != nil {
		v := *p.Price
		out.Price = &v
	}
	return out
}

/* -------------------------------- travel --------------------------------- */

type TravelStage string

const (
	TravelIdle                 TravelStage = "idle"
	TravelGatheringPreferences TravelStage = "gathering_preferences"
	TravelSearching            TravelStage = "searching"
	TravelPlanning             TravelStage = "planning"
	// TravelRefining sits between planning and completed. No current tool
	// advances to it; itinerary edits arrive after completion and keep the
	// completed stage under the monotonic rule.
	TravelRefining  TravelStage = "refining"
	TravelCompleted TravelStage = "completed"
)

func (s TravelStage) rank() int {
	switch s {
	case TravelGatheringPreferences:
		return 1
	case TravelSearching:
		return 2
	case TravelPlanning:
		return 3
	case TravelRefining:
		return 4
	case TravelCompleted:
		return 5
	default:
		return 0
	}
}

// Advance returns the later of s and next, mirroring MedicineStage.Advance.
func (s TravelStage) Advance(next TravelStage) TravelStage {
	if next.rank() < s.rank() {
		return s
	}
	return next
}

type BudgetLevel string

const (
	BudgetLow      BudgetLevel = "budget"
	BudgetModerate BudgetLevel = "moderate"
	BudgetLuxury   BudgetLevel = "luxury"
)

func (b BudgetLevel) IsValid() bool {
	switch b {
	case BudgetLow, BudgetModerate, BudgetLuxury:
		return true
	}
	return false
}

type PaceLevel string

const (
	PaceRelaxed  PaceLevel = "relaxed"
	PaceModerate PaceLevel = "moderate"
	PacePacked   PaceLevel = "packed"
)

func (p PaceLevel) IsValid() bool {
	switch p {
	case PaceRelaxed, PaceModerate, PacePacked:
		return true
	}
	return false
}

type TravelState struct {
	Stage       TravelStage       `json:"stage"`
	Preferences TravelPreferences `json:"preferences"`
	Itinerary   []DayPlan         `json:"itinerary,omitempty"`
	TotalCost   float64           `json:"total_cost,omitempty"`

	// Progress is a percentage, monotonic non-decreasing while planning.
	Progress int `json:"progress,omitempty"`
}

type TravelPreferences struct {
	Destination string      `json:"destination,omitempty"`
	StartDate   string      `json:"start_date,omitempty"`
	EndDate     string      `json:"end_date,omitempty"`
	Budget      BudgetLevel `json:"budget,omitempty"`
	Interests   []string    `json:"interests,omitempty"`
	Pace        PaceLevel   `json:"pace,omitempty"`
	Travelers   int         `json:"travelers,omitempty"`
}

// PreferencePatch is a field-by-field merge source. Zero-valued fields never
// overwrite previously known values.
type PreferencePatch struct {
	Destination string
	StartDate   string
	EndDate     string
	Budget      string
	Interests   []string
	Pace        string
	Travelers   int
}

// Apply merges the patch into p. Unrecognized budget/pace values are dropped
// rather than stored, keeping the panel's enum rendering safe.
func (p TravelPreferences) Apply(patch PreferencePatch) TravelPreferences {
	out := p
	if patch.Destination != "" {
		out.Destination = patch.Destination
	}
	if patch.StartDate != "" {
		out.StartDate = patch.StartDate
	}
	if patch.EndDate != "" {
		out.EndDate = patch.EndDate
	}
	if b := BudgetLevel(patch.Budget); patch.Budget != "" && b.IsValid() {
		out.Budget = b
	}
	if len(patch.Interests) > 0 {
		out.Interests = append([]string(nil), patch.Interests...)
	}
	if pc := PaceLevel(patch.Pace); patch.Pace != "" && pc.IsValid() {
		out.Pace = pc
	}
	if patch.Travelers > 0 {
		out.Travelers = patch.Travelers
	}
	return out
}

type ActivityType string

const (
	ActivityAttraction    ActivityType = "attraction"
	ActivityFood          ActivityType = "food"
	ActivityTransport     ActivityType = "transport"
	ActivityAccommodation ActivityType = "accommodation"
	ActivityGeneric       ActivityType = "activity"
)

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityAttraction, ActivityFood, ActivityTransport, ActivityAccommodation, ActivityGeneric:
		return true
	}
	return false
}

type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date,omitempty"`
	Theme      string     `json:"theme,omitempty"`
	Activities []Activity `json:"activities,omitempty"`
}

type Activity struct {
	ID          string       `json:"id"`
	Time        string       `json:"time,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	Type        ActivityType `json:"type"`
	Cost        float64      `json:"cost"`
	Location    string       `json:"location,omitempty"`
	Tips        string       `json:"tips,omitempty"`
}

// ItineraryCost sums activity costs across all days.
func ItineraryCost(days []DayPlan) float64 {
	var total float64
	for _, d := range days {
		for _, a := range d.Activities {
			total += a.Cost
		}
	}
	return total
}

// CloneItinerary deep-copies a day-plan slice.
func CloneItinerary(days []DayPlan) []DayPlan {
	if days == nil {
		return nil
	}
	out := make([]DayPlan, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Activities = append([]Activity(nil), d.Activities...)
	}
	return out
}

func (t TravelState) clone() TravelState {
	out := t
	out.Preferences.Interests = append([]string(nil), t.Preferences.Interests...)
	out.Itinerary = CloneItinerary(t.Itinerary)
	return out
}
