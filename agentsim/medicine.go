package agentsim

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	"github.com/pokus-ai/taskpanel/engine/interrupt"
	"github.com/pokus-ai/taskpanel/pkg/tavily"
)

// SearchPharmacies researches pharmacies near a location. With web search and
// synthesis enabled the list comes from real research; otherwise a plausible
// simulated list is produced. Pending and complete events are emitted either
// way.
func (s *Simulator) SearchPharmacies(ctx context.Context, args contract.SearchPharmaciesArgs) (contract.SearchPharmaciesResult, error) {
	if args.RadiusKM <= 0 {
		args.RadiusKM = 5
	}
	rec := s.emitPending(contract.ToolSearchPharmacies, args)

	res, err := s.searchPharmacies(ctx, args)
	if err != nil {
		log.Warn().Err(err).Str("location", args.Location).Msg("agentsim: pharmacy search failed")
		s.emit(contract.ToolSearchPharmacies, contract.PhaseComplete, rec, map[string]any{
			"error":   true,
			"message": fmt.Sprintf("Could not search for pharmacies: %v", err),
		})
		return contract.SearchPharmaciesResult{}, err
	}

	s.emitComplete(contract.ToolSearchPharmacies, rec, res)
	return res, nil
}

func (s *Simulator) searchPharmacies(ctx context.Context, args contract.SearchPharmaciesArgs) (contract.SearchPharmaciesResult, error) {
	if s.search != nil && s.pharmacyRunner != nil {
		web, err := s.search.Search(ctx, tavily.SearchRequest{
			Query:         fmt.Sprintf("pharmacies near %s that stock %s, with addresses and opening hours", args.Location, args.MedicineName),
			SearchDepth:   "basic",
			MaxResults:    5,
			IncludeAnswer: true,
		})
		if err != nil {
			return contract.SearchPharmaciesResult{}, err
		}

		var snippets []string
		for _, r := range web.Results {
			if r.Content != "" {
				snippets = append(snippets, r.Content)
			}
		}
		input := fmt.Sprintf(
			"PHARMACY RESEARCH:\n%s\n\nADDITIONAL SOURCE CONTEXT:\n%s\n\nSEARCH DETAILS:\n- Medicine: %s\n- Location: %s\n- Radius: %.1f km",
			web.Answer, clip(strings.Join(snippets, "\n"), 2000), args.MedicineName, args.Location, args.RadiusKM,
		)

		synth, err := s.pharmacyRunner.Invoke(ctx, map[string]any{"input": input})
		if err != nil {
			return contract.SearchPharmaciesResult{}, err
		}
		return contract.SearchPharmaciesResult{
			Success:       true,
			MedicineName:  args.MedicineName,
			Location:      args.Location,
			Pharmacies:    synth.Pharmacies,
			TotalFound:    max(synth.TotalFound, len(synth.Pharmacies)),
			SearchSummary: synth.SearchSummary,
			Message:       fmt.Sprintf("Found %d pharmacies near %s. Check the side panel for details.", len(synth.Pharmacies), args.Location),
		}, nil
	}

	pharmacies := s.simulatedPharmacies(args)
	return contract.SearchPharmaciesResult{
		Success:       true,
		MedicineName:  args.MedicineName,
		Location:      args.Location,
		Pharmacies:    pharmacies,
		TotalFound:    len(pharmacies),
		SearchSummary: fmt.Sprintf("Simulated pharmacy results near %s", args.Location),
		Message:       fmt.Sprintf("Found %d pharmacies near %s. Check the side panel for details.", len(pharmacies), args.Location),
	}, nil
}

func (s *Simulator) simulatedPharmacies(args contract.SearchPharmaciesArgs) []contract.PharmacyResult {
	names := []string{
		fmt.Sprintf("%s Central Pharmacy", args.Location),
		fmt.Sprintf("HealthPlus %s", args.Location),
		"MediCare Express",
		"GreenCross Drugstore",
	}
	out := make([]contract.PharmacyResult, 0, len(names))
	for i, name := range names {
		out = append(out, contract.PharmacyResult{
			Name:       name,
			Address:    fmt.Sprintf("%d Main Street, %s", 100+40*i, args.Location),
			DistanceKM: round1(0.5 + s.rng.Float64()*(args.RadiusKM-0.5)),
			Phone:      fmt.Sprintf("+1-555-01%02d", 10+i),
			IsOpen:     i != 3,
			Hours:      "Mon-Sat 8:00-20:00",
			Rating:     round1(3.5 + s.rng.Float64()*1.4),
		})
	}
	return out
}

// CheckAvailability simulates a stock check at one pharmacy. Stock is found
// roughly 7 times out of 10.
func (s *Simulator) CheckAvailability(ctx context.Context, args contract.CheckAvailabilityArgs) (contract.CheckAvailabilityResult, error) {
	rec := s.emitPending(contract.ToolCheckAvailability, args)

	name := args.PharmacyName
	if name == "" {
		name = fmt.Sprintf("Pharmacy %s", args.PharmacyID)
	}

	inStock := s.rng.Float64() > 0.3
	res := contract.CheckAvailabilityResult{
		PharmacyID:   args.PharmacyID,
		PharmacyName: name,
		Medicine:     args.MedicineName,
		InStock:      inStock,
	}
	if inStock {
		res.Quantity = 5 + s.rng.Intn(96)
		price := round2(5 + s.rng.Float64()*20)
		res.PricePerUnit = &price
		res.Message = fmt.Sprintf("In stock at %s", name)
	} else {
		res.Message = fmt.Sprintf("Out of stock at %s", name)
	}

	s.emitComplete(contract.ToolCheckAvailability, rec, res)
	return res, nil
}

// RequestCallConfirmation offers the human-in-the-loop interrupt that guards
// a pharmacy call. Approving runs CallPharmacy; declining does nothing.
func (s *Simulator) RequestCallConfirmation(ctx context.Context, args contract.CallPharmacyArgs) (*interrupt.Resolver, error) {
	quantity := args.QuantityNeeded
	if quantity <= 0 {
		quantity = 1
	}
	req := interrupt.Request{
		Action:       interrupt.ActionConfirmPharmacyCall,
		PharmacyName: args.PharmacyName,
		MedicineName: args.MedicineName,
		Quantity:     quantity,
		Description:  fmt.Sprintf("Call %s to ask about %s and reserve %d unit(s)? The call is simulated.", args.PharmacyName, args.MedicineName, quantity),
	}
	return interrupt.NewResolver(req, func(decision json.RawMessage) {
		var d interrupt.Decision
		if err := json.Unmarshal(decision, &d); err != nil || !d.Approved {
			log.Debug().Str("pharmacy", args.PharmacyName).Msg("agentsim: call declined")
			return
		}
		if _, err := s.CallPharmacy(ctx, args); err != nil {
			log.Warn().Err(err).Msg("agentsim: confirmed call failed")
		}
	})
}

// CallPharmacy simulates phoning a pharmacy. The medicine is available about
// 8 times out of 10; the transcript mirrors how the call went.
func (s *Simulator) CallPharmacy(ctx context.Context, args contract.CallPharmacyArgs) (contract.CallPharmacyResult, error) {
	quantityNeeded := args.QuantityNeeded
	if quantityNeeded <= 0 {
		quantityNeeded = 1
	}
	rec := s.emitPending(contract.ToolCallPharmacy, args)

	available := s.rng.Float64() > 0.2
	res := contract.CallPharmacyResult{
		Success:      true,
		Simulated:    true,
		PharmacyName: args.PharmacyName,
		Medicine:     args.MedicineName,
		Available:    available,
	}
	if available {
		res.Quantity = 10 + s.rng.Intn(41)
		res.Price = round2(5 + s.rng.Float64()*15)
		res.Reserved = true
		res.QuantityReserved = quantityNeeded
		res.Transcript = []string{
			fmt.Sprintf("Pharmacist: Thank you for calling %s, how can I help you?", args.PharmacyName),
			fmt.Sprintf("Customer: Hi, I'm looking for %s. Do you have it in stock?", args.MedicineName),
			fmt.Sprintf("Pharmacist: Let me check... Yes, we do have %s in stock.", args.MedicineName),
			fmt.Sprintf("Pharmacist: We currently have %d units available at $%.2f each.", res.Quantity, res.Price),
			fmt.Sprintf("Customer: Great! Can I reserve %d unit(s)?", quantityNeeded),
			fmt.Sprintf("Pharmacist: Absolutely! I've reserved %d unit(s) under your name.", quantityNeeded),
			"Pharmacist: The reservation will be held for 2 hours. Is there anything else?",
			"Customer: No, that's all. Thank you!",
			fmt.Sprintf("Pharmacist: You're welcome! See you soon at %s. Goodbye!", args.PharmacyName),
		}
		res.Message = fmt.Sprintf("%s is available at %s. %d units in stock at $%.2f each. Reserved %d unit(s) for pickup.",
			args.MedicineName, args.PharmacyName, res.Quantity, res.Price, quantityNeeded)
	} else {
		res.Transcript = []string{
			fmt.Sprintf("Pharmacist: Thank you for calling %s, how can I help you?", args.PharmacyName),
			fmt.Sprintf("Customer: Hi, I'm looking for %s. Do you have it in stock?", args.MedicineName),
			fmt.Sprintf("Pharmacist: Let me check... I'm sorry, we're currently out of %s.", args.MedicineName),
			"Pharmacist: We expect a new shipment in 2-3 business days.",
			"Customer: I see. Do you know any nearby pharmacies that might have it?",
			"Pharmacist: You might want to try the larger chains nearby, they usually have more stock.",
			"Customer: Thanks for the information.",
			"Pharmacist: You're welcome. Have a good day!",
		}
		res.Message = fmt.Sprintf("%s is currently out of stock at %s. Expected restock in 2-3 days.", args.MedicineName, args.PharmacyName)
	}

	s.emitComplete(contract.ToolCallPharmacy, rec, res)
	return res, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
