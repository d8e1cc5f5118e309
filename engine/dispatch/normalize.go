package dispatch

import (
	"fmt"
	"strings"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

const (
	defaultPharmacyRating = 4.0
	defaultPharmacyPhone  = "Contact pharmacy directly"
)

// normalizePharmacies maps raw agent entries onto the panel schema. The agent
// side does not control this shape, so every field that may be absent gets a
// deterministic default: ids are synthesized from the list position, phone
// falls back to a placeholder, rating to 4.0 and stock to unknown.
func normalizePharmacies(raw []contract.PharmacyResult) []statex.Pharmacy {
	out := make([]statex.Pharmacy, 0, len(raw))
	for i, r := range raw {
		p := statex.Pharmacy{
			ID:         r.ID,
			Name:       r.Name,
			Address:    r.Address,
			DistanceKM: r.DistanceKM,
			Phone:      r.Phone,
			OpenNow:    r.IsOpen,
			Hours:      r.Hours,
			Rating:     r.Rating,
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("pharmacy-%d", i)
		}
		if p.Phone == "" {
			p.Phone = defaultPharmacyPhone
		}
		if p.Rating == 0 {
			p.Rating = defaultPharmacyRating
		}
		if r.HasMedicine != nil {
			v := *r.HasMedicine
			p.HasStock = &v
		}
		if r.EstimatedPrice != nil {
			v := *r.EstimatedPrice
			p.Price = &v
		}
		out = append(out, p)
	}
	return out
}

// normalizeItinerary defaults day numbers to their 1-based position, activity
// ids to day<day>-act<index> (index 1-based), and unknown activity types to
// the generic bucket. Costs absent on the wire decode as 0 already.
func normalizeItinerary(raw []contract.DayPlanResult) []statex.DayPlan {
	out := make([]statex.DayPlan, 0, len(raw))
	for i, d := range raw {
		day := statex.DayPlan{
			Day:   d.Day,
			Date:  d.Date,
			Theme: d.Theme,
		}
		if day.Day <= 0 {
			day.Day = i + 1
		}
		for j, a := range d.Activities {
			act := statex.Activity{
				ID:          a.ID,
				Time:        a.Time,
				Title:       a.Title,
				Description: a.Description,
				Duration:    a.Duration,
				Type:        statex.ActivityType(a.Type),
				Cost:        a.Cost,
				Location:    a.Location,
				Tips:        a.Tips,
			}
			if act.ID == "" {
				act.ID = fmt.Sprintf("day%d-act%d", day.Day, j+1)
			}
			if !act.Type.IsValid() {
				act.Type = statex.ActivityGeneric
			}
			day.Activities = append(day.Activities, act)
		}
		out = append(out, day)
	}
	return out
}

// normalizeInterests accepts either a delimited string ("food, culture") or a
// list and returns trimmed non-empty entries in arrival order.
func normalizeInterests(v any) []string {
	var parts []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
