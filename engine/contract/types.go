package contract

import (
	"encoding/json"

	statex "github.com/pokus-ai/taskpanel/engine/state"
)

// Phase is the lifecycle phase of a tool-call event. Events for one tool are
// expected to arrive pending then complete, but a complete without a prior
// pending must be tolerated by every reducer.
type Phase string

const (
	PhasePending  Phase = "pending"
	PhaseComplete Phase = "complete"
)

// Fixed tool catalogue. Names arriving outside this table are ignored by the
// router so the agent side can grow without a client rebuild.
const (
	ToolSearchPharmacies  = "search_pharmacies"
	ToolCheckAvailability = "check_availability"
	ToolCallPharmacy      = "call_pharmacy"

	ToolUpdatePreferences = "update_preferences"
	ToolGenerateItinerary = "generate_itinerary"
	ToolModifyItinerary   = "modify_itinerary"
	ToolSearchActivities  = "search_activities"
)

// Frontend-only actions. They mutate local state or trigger a local side
// effect, but flow through the same router as agent tools.
const (
	ActionSelectPharmacy  = "select_pharmacy"
	ActionExportItinerary = "export_itinerary"
	ActionSaveToFavorites = "save_to_favorites"
)

// ToolCallEvent is one lifecycle event from the agent stream. Args and Result
// are free-form on the wire; DecodeArgs/DecodeResult project them onto the
// typed schema for the tool in question.
type ToolCallEvent struct {
	Tool   string         `json:"tool"`
	Phase  Phase          `json:"phase"`
	Args   map[string]any `json:"args,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// Succeeded reports whether the event carries a result with an explicit
// success discriminant.
func (e ToolCallEvent) Succeeded() bool {
	if e.Result == nil {
		return false
	}
	ok, _ := e.Result["success"].(bool)
	return ok
}

// Failed reports whether the event carries a result with an explicit error
// discriminant. Tools that never emit a success flag (check_availability,
// call_pharmacy) are gated on this instead of Succeeded.
func (e ToolCallEvent) Failed() bool {
	if e.Result == nil {
		return false
	}
	failed, _ := e.Result["error"].(bool)
	return failed
}

// ErrorMessage returns the agent-supplied failure message, if any.
func (e ToolCallEvent) ErrorMessage() string {
	if e.Result == nil {
		return ""
	}
	msg, _ := e.Result["message"].(string)
	return msg
}

/* --------------------------- medicine schemas ---------------------------- */

type SearchPharmaciesArgs struct {
	MedicineName string  `json:"medicine_name"`
	Location     string  `json:"location"`
	RadiusKM     float64 `json:"radius_km,omitempty"`
}

// PharmacyResult is one raw pharmacy entry as emitted by the agent. Missing
// fields are defaulted during normalization, not here.
type PharmacyResult struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	Address        string   `json:"address,omitempty"`
	DistanceKM     float64  `json:"distance_km,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	IsOpen         bool     `json:"is_open,omitempty"`
	Hours          string   `json:"hours,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	HasMedicine    *bool    `json:"has_medicine,omitempty"`
	EstimatedPrice *float64 `json:"estimated_price,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

type SearchPharmaciesResult struct {
	Success       bool             `json:"success,omitempty"`
	MedicineName  string           `json:"medicine_name,omitempty"`
	Location      string           `json:"location,omitempty"`
	Pharmacies    []PharmacyResult `json:"pharmacies,omitempty"`
	TotalFound    int              `json:"total_found,omitempty"`
	SearchSummary string           `json:"search_summary,omitempty"`
	Message       string           `json:"message,omitempty"`
}

type CheckAvailabilityArgs struct {
	PharmacyID   string `json:"pharmacy_id"`
	PharmacyName string `json:"pharmacy_name,omitempty"`
	MedicineName string `json:"medicine_name"`
	Location     string `json:"location,omitempty"`
}

type CheckAvailabilityResult struct {
	PharmacyID   string   `json:"pharmacy_id"`
	PharmacyName string   `json:"pharmacy_name"`
	Medicine     string   `json:"medicine,omitempty"`
	InStock      bool     `json:"in_stock"`
	Quantity     int      `json:"quantity,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
	Message      string   `json:"message,omitempty"`
}

type CallPharmacyArgs struct {
	PharmacyID     string `json:"pharmacy_id,omitempty"`
	PharmacyName   string `json:"pharmacy_name"`
	MedicineName   string `json:"medicine_name"`
	QuantityNeeded int    `json:"quantity_needed,omitempty"`
}

type CallPharmacyResult struct {
	Success          bool     `json:"success,omitempty"`
	Simulated        bool     `json:"simulated,omitempty"`
	PharmacyName     string   `json:"pharmacy_name,omitempty"`
	Medicine         string   `json:"medicine,omitempty"`
	Available        bool     `json:"available"`
	Quantity         int      `json:"quantity,omitempty"`
	Price            float64  `json:"price,omitempty"`
	Reserved         bool     `json:"reserved,omitempty"`
	QuantityReserved int      `json:"quantity_reserved,omitempty"`
	Transcript       []string `json:"transcript,omitempty"`
	Message          string   `json:"message,omitempty"`
}

/* ---------------------------- travel schemas ----------------------------- */

// UpdatePreferencesArgs carries a partial preference patch. Interests may
// arrive as a comma-delimited string or as a list; reducers normalize it.
type UpdatePreferencesArgs struct {
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Interests   any    `json:"interests,omitempty"`
	Pace        string `json:"pace,omitempty"`
	Travelers   int    `json:"travelers,omitempty"`
}

type ActivityResult struct {
	ID          string  `json:"id,omitempty"`
	Time        string  `json:"time,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Type        string  `json:"type,omitempty"`
	Cost        float64 `json:"cost,omitempty"`
	Location    string  `json:"location,omitempty"`
	Tips        string  `json:"tips,omitempty"`
}

type DayPlanResult struct {
	Day        int              `json:"day,omitempty"`
	Date       string           `json:"date,omitempty"`
	Theme      string           `json:"theme,omitempty"`
	Activities []ActivityResult `json:"activities,omitempty"`
}

type GenerateItineraryArgs struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Budget      string `json:"budget,omitempty"`
	Interests   string `json:"interests,omitempty"`
	Pace        string `json:"pace,omitempty"`
}

type GenerateItineraryResult struct {
	Success     bool            `json:"success,omitempty"`
	Destination string          `json:"destination,omitempty"`
	NumDays     int             `json:"num_days,omitempty"`
	Itinerary   []DayPlanResult `json:"itinerary,omitempty"`
	TotalCost   float64         `json:"total_cost,omitempty"`
	Tips        []string        `json:"tips,omitempty"`
	Message     string          `json:"message,omitempty"`
}

type ModifyItineraryArgs struct {
	Day                    int    `json:"day"`
	Action                 string `json:"action"`
	ActivityIndex          *int   `json:"activity_index,omitempty"`
	NewActivityTitle       string `json:"new_activity_title,omitempty"`
	NewActivityDescription string `json:"new_activity_description,omitempty"`
	NewActivityTime        string `json:"new_activity_time,omitempty"`
}

// ModifyItineraryResult replaces the panel itinerary wholesale. The agent is
// trusted here: it operates on already-normalized days, so the payload maps
// straight onto the domain types.
type ModifyItineraryResult struct {
	Success   bool             `json:"success,omitempty"`
	Itinerary []statex.DayPlan `json:"itinerary,omitempty"`
	TotalCost *float64         `json:"total_cost,omitempty"`
	Message   string           `json:"message,omitempty"`
}

type SearchActivitiesArgs struct {
	Destination  string `json:"destination"`
	ActivityType string `json:"activity_type"`
	Budget       string `json:"budget,omitempty"`
}

type SearchActivitiesResult struct {
	Success         bool   `json:"success,omitempty"`
	Destination     string `json:"destination,omitempty"`
	ActivityType    string `json:"activity_type,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
	Message         string `json:"message,omitempty"`
}

/* --------------------------- frontend actions ---------------------------- */

type SelectPharmacyArgs struct {
	PharmacyID string `json:"pharmacy_id"`
}

// ActionAck is the structured acknowledgment every frontend-action handler
// returns to the agent collaborator.
type ActionAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

/* ------------------------------- decoding -------------------------------- */

// DecodeArgs projects the event's free-form args onto the typed schema for
// its tool. Missing fields keep zero values; unknown fields are dropped.
func DecodeArgs[T any](ev ToolCallEvent) (T, error) {
	return decodeRecord[T](ev.Args)
}

// DecodeResult projects the event's free-form result onto a typed schema.
func DecodeResult[T any](ev ToolCallEvent) (T, error) {
	return decodeRecord[T](ev.Result)
}

// Record converts a typed payload into the free-form shape carried on the
// wire. Used by event producers.
func Record(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil
	}
	return rec
}

func decodeRecord[T any](rec map[string]any) (T, error) {
	var out T
	if rec == nil {
		return out, nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
