// Package interrupt handles agent-issued events that suspend progress until
// the user takes exactly one decision. The resolver never touches panel
// state; the agent reacts to the decision with ordinary tool-call events.
package interrupt

import (
	"encoding/json"
	"errors"
	"sync/atomic"
)

// ActionConfirmPharmacyCall is the only interrupt discriminant the engine
// recognizes. Events carrying any other action are not interrupts.
const ActionConfirmPharmacyCall = "confirm_pharmacy_call"

var (
	ErrUnknownInterrupt = errors.New("unknown interrupt action")
	ErrAlreadyResolved  = errors.New("interrupt already resolved")
)

// Request is the payload presented on the confirmation surface.
type Request struct {
	Action       string `json:"action"`
	PharmacyName string `json:"pharmacy_name,omitempty"`
	MedicineName string `json:"medicine_name,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Decision is the fixed-shape object sent back through the resolution
// callback. Exactly one field is set.
type Decision struct {
	Approved bool `json:"approved,omitempty"`
	Declined bool `json:"declined,omitempty"`
}

// ResolveFunc delivers the serialized decision to the agent stream.
type ResolveFunc func(decision json.RawMessage)

// Resolver guards a single-use resolution callback. The first call to
// Approve or Decline wins; every later call returns ErrAlreadyResolved.
type Resolver struct {
	req      Request
	resolve  ResolveFunc
	resolved atomic.Bool
}

func NewResolver(req Request, resolve ResolveFunc) (*Resolver, error) {
	if req.Action != ActionConfirmPharmacyCall {
		return nil, ErrUnknownInterrupt
	}
	if resolve == nil {
		return nil, errors.New("resolution callback is required")
	}
	return &Resolver{req: req, resolve: resolve}, nil
}

// Request returns the payload for rendering the confirmation surface.
func (r *Resolver) Request() Request {
	return r.req
}

// Resolved reports whether a decision has already been delivered.
func (r *Resolver) Resolved() bool {
	return r.resolved.Load()
}

func (r *Resolver) Approve() error {
	return r.deliver(Decision{Approved: true})
}

func (r *Resolver) Decline() error {
	return r.deliver(Decision{Declined: true})
}

func (r *Resolver) deliver(d Decision) error {
	if !r.resolved.CompareAndSwap(false, true) {
		return ErrAlreadyResolved
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	r.resolve(raw)
	return nil
}
