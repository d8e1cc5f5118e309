package dispatch

import (
	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

func reduceSearchPharmacies(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	s.ActiveTask = statex.TaskMedicine

	switch ev.Phase {
	case contract.PhasePending:
		s.Medicine.Stage = s.Medicine.Stage.Advance(statex.MedicineSearching)
		args, err := contract.DecodeArgs[contract.SearchPharmaciesArgs](ev)
		if err != nil {
			log.Warn().Err(err).Msg("reduce: bad search_pharmacies args")
			return s
		}
		if args.MedicineName != "" {
			s.Medicine.MedicineName = args.MedicineName
		}
		if args.Location != "" {
			s.Medicine.Location = args.Location
		}

	case contract.PhaseComplete:
		if !ev.Succeeded() {
			// Failure is rendered inline from the event itself; the list and
			// stage stay as they were.
			return s
		}
		res, err := contract.DecodeResult[contract.SearchPharmaciesResult](ev)
		if err != nil {
			log.Warn().Err(err).Msg("reduce: bad search_pharmacies result")
			return s
		}
		if len(res.Pharmacies) == 0 {
			return s
		}
		if res.MedicineName != "" {
			s.Medicine.MedicineName = res.MedicineName
		}
		if res.Location != "" {
			s.Medicine.Location = res.Location
		}
		s.Medicine.Pharmacies = normalizePharmacies(res.Pharmacies)
		s.Medicine.Stage = s.Medicine.Stage.Advance(statex.MedicineFoundPharmacies)
	}
	return s
}

func reduceCheckAvailability(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	if ev.Phase != contract.PhaseComplete {
		return s
	}
	s.ActiveTask = statex.TaskMedicine
	if ev.Failed() {
		return s
	}

	res, err := contract.DecodeResult[contract.CheckAvailabilityResult](ev)
	if err != nil {
		log.Warn().Err(err).Msg("reduce: bad check_availability result")
		return s
	}

	// Patch exactly one entry; every other pharmacy keeps its prior fields.
	for i := range s.Medicine.Pharmacies {
		p := &s.Medicine.Pharmacies[i]
		if !matchesPharmacy(*p, res.PharmacyID, res.PharmacyName) {
			continue
		}
		inStock := res.InStock
		p.HasStock = &inStock
		if res.PricePerUnit != nil {
			price := *res.PricePerUnit
			p.Price = &price
		}
		break
	}
	s.Medicine.Stage = s.Medicine.Stage.Advance(statex.MedicineCheckingAvailability)
	return s
}

func reduceCallPharmacy(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	s.ActiveTask = statex.TaskMedicine

	switch ev.Phase {
	case contract.PhasePending:
		s.Medicine.Stage = s.Medicine.Stage.Advance(statex.MedicineCalling)

	case contract.PhaseComplete:
		if ev.Failed() {
			return s
		}
		res, err := contract.DecodeResult[contract.CallPharmacyResult](ev)
		if err != nil {
			log.Warn().Err(err).Msg("reduce: bad call_pharmacy result")
			return s
		}
		args, _ := contract.DecodeArgs[contract.CallPharmacyArgs](ev)

		target := res.PharmacyName
		if target == "" {
			target = args.PharmacyName
		}
		if p, ok := s.Medicine.PharmacyByName(target); ok {
			s.Medicine.SelectedPharmacyID = p.ID
		}
		s.Medicine.CallResult = &statex.CallResult{
			Available:  res.Available,
			Quantity:   res.Quantity,
			Price:      res.Price,
			Transcript: append([]string(nil), res.Transcript...),
		}
		s.Medicine.Stage = s.Medicine.Stage.Advance(statex.MedicineCompleted)
	}
	return s
}

// reduceSelectPharmacy handles the frontend action through the same table so
// the selection renders with the same status pipeline as agent tools.
func reduceSelectPharmacy(s statex.UnifiedState, ev contract.ToolCallEvent) statex.UnifiedState {
	if ev.Phase != contract.PhaseComplete {
		return s
	}
	args, err := contract.DecodeArgs[contract.SelectPharmacyArgs](ev)
	if err != nil || args.PharmacyID == "" {
		return s
	}
	for _, p := range s.Medicine.Pharmacies {
		if p.ID == args.PharmacyID {
			s.Medicine.SelectedPharmacyID = p.ID
			break
		}
	}
	return s
}

func matchesPharmacy(p statex.Pharmacy, id, name string) bool {
	if id != "" && p.ID == id {
		return true
	}
	return name != "" && p.Name == name
}
