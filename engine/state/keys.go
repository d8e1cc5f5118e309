package state

// Persisted document keys. One JSON document per logical key; each document
// is the direct serialization of its in-memory value.
const (
	KeyUnifiedState = "pokus_unified_state"
	KeySessionID    = "pokus_session_id"
	KeySessionStart = "pokus_session_start"
	KeyFavorites    = "pokus_favorites"
)
