// Package action implements the fixed catalogue of frontend actions exposed
// to the agent collaborator.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

type SaveToFavoritesArgs struct {
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`
}

type ExportItineraryArgs struct {
	Title string `json:"title,omitempty"`
}

// Handlers executes catalogue actions against the live engine. Selection is
// dispatched through the event router so it renders like any tool status;
// export and favorites are local side effects only.
type Handlers struct {
	dispatcher   contract.Dispatcher
	states       contract.StateProvider
	store        statex.DocumentStore
	favoritesKey string

	now func() time.Time
}

func NewHandlers(dispatcher contract.Dispatcher, states contract.StateProvider, store statex.DocumentStore) (*Handlers, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if states == nil {
		return nil, errors.New("state provider is required")
	}
	if store == nil {
		return nil, errors.New("document store is required")
	}
	return &Handlers{
		dispatcher:   dispatcher,
		states:       states,
		store:        store,
		favoritesKey: statex.KeyFavorites,
		now:          time.Now,
	}, nil
}

// Execute runs one catalogue action and returns the acknowledgment for the
// agent. Unknown actions fail with ErrUnknownAction.
func (h *Handlers) Execute(ctx context.Context, action string, args map[string]any) (contract.ActionAck, error) {
	switch action {
	case contract.ActionSelectPharmacy:
		return h.selectPharmacy(args)
	case contract.ActionExportItinerary:
		return h.exportItinerary(args)
	case contract.ActionSaveToFavorites:
		return h.saveToFavorites(ctx, args)
	default:
		return contract.ActionAck{}, fmt.Errorf("%w: %s", contract.ErrUnknownAction, action)
	}
}

func (h *Handlers) selectPharmacy(args map[string]any) (contract.ActionAck, error) {
	ev := contract.ToolCallEvent{
		Tool:  contract.ActionSelectPharmacy,
		Phase: contract.PhaseComplete,
		Args:  args,
	}
	id, _ := args["pharmacy_id"].(string)
	if id == "" {
		return contract.ActionAck{Message: "pharmacy_id is required"}, contract.ErrValidation
	}
	h.dispatcher.Dispatch(ev)
	return contract.ActionAck{Success: true, Message: "Pharmacy selected"}, nil
}

func (h *Handlers) exportItinerary(args map[string]any) (contract.ActionAck, error) {
	s := h.states.Snapshot()
	if len(s.Travel.Itinerary) == 0 {
		return contract.ActionAck{Message: "No itinerary to export yet"}, nil
	}
	title, _ := args["title"].(string)
	text := BuildItineraryExport(title, s.Travel)
	return contract.ActionAck{Success: true, Message: text}, nil
}

func (h *Handlers) saveToFavorites(ctx context.Context, args map[string]any) (contract.ActionAck, error) {
	kind, _ := args["kind"].(string)
	label, _ := args["label"].(string)
	s := h.states.Snapshot()

	var (
		fav Favorite
		err error
	)
	switch kind {
	case FavoriteKindPharmacy:
		p, ok := s.Medicine.SelectedPharmacy()
		if !ok {
			return contract.ActionAck{Message: "No pharmacy selected"}, nil
		}
		if label == "" {
			label = p.Name
		}
		fav, err = newFavorite(kind, label, p, h.now())
	case FavoriteKindItinerary:
		if len(s.Travel.Itinerary) == 0 {
			return contract.ActionAck{Message: "No itinerary to save yet"}, nil
		}
		if label == "" {
			label = "Trip to " + s.Travel.Preferences.Destination
		}
		fav, err = newFavorite(kind, label, s.Travel, h.now())
	default:
		return contract.ActionAck{Message: "kind must be pharmacy or itinerary"}, contract.ErrValidation
	}
	if err != nil {
		return contract.ActionAck{}, err
	}

	if err := appendFavorite(ctx, h.store, h.favoritesKey, fav); err != nil {
		log.Warn().Err(err).Msg("action: favorites write failed")
		return contract.ActionAck{Message: "Could not save favorite"}, nil
	}
	return contract.ActionAck{Success: true, Message: "Saved to favorites"}, nil
}
