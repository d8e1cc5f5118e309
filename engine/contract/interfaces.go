package contract

import (
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

// Dispatcher accepts tool-call events for asynchronous application. Dispatch
// never applies the event on the caller's goroutine; the engine folds it on
// its own loop.
type Dispatcher interface {
	Dispatch(ev ToolCallEvent)
}

// StateProvider exposes the unified state read-only. Snapshots are deep
// copies and never alias engine-owned memory.
type StateProvider interface {
	Snapshot() statex.UnifiedState
}
