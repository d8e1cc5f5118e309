package action

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	statex "github.com/pokus-ai/taskpanel/engine/state"
)

const (
	FavoriteKindPharmacy  = "pharmacy"
	FavoriteKindItinerary = "itinerary"
)

// Favorite is one saved entry in the favorites document. Payload holds the
// JSON serialization of whatever was saved so the list survives schema drift
// in the live panel types.
type Favorite struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	Label   string          `json:"label"`
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newFavorite(kind, label string, payload any, now time.Time) (Favorite, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Favorite{}, err
	}
	return Favorite{
		ID:      uuid.NewString(),
		Kind:    kind,
		Label:   label,
		SavedAt: now.UTC(),
		Payload: raw,
	}, nil
}

func loadFavorites(ctx context.Context, store statex.DocumentStore, key string) ([]Favorite, error) {
	doc, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, statex.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var favs []Favorite
	if err := json.Unmarshal(doc, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

func appendFavorite(ctx context.Context, store statex.DocumentStore, key string, fav Favorite) error {
	favs, err := loadFavorites(ctx, store, key)
	if err != nil {
		return err
	}
	favs = append(favs, fav)
	doc, err := json.Marshal(favs)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, doc)
}
