package interrupt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

func validRequest() Request {
	return Request{
		Action:       ActionConfirmPharmacyCall,
		PharmacyName: "CVS",
		MedicineName: "paracetamol",
		Quantity:     2,
	}
}

func TestNewResolverRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(Request{Action: "confirm_rocket_launch"}, func(json.RawMessage) {})
	if !errors.Is(err, ErrUnknownInterrupt) {
		t.Fatalf("NewResolver() error = %v, want ErrUnknownInterrupt", err)
	}
}

func TestNewResolverRequiresCallback(t *testing.T) {
	t.Parallel()

	if _, err := NewResolver(validRequest(), nil); err == nil {
		t.Fatal("NewResolver(nil callback) error = nil, want error")
	}
}

func TestResolverApproveSerializesDecision(t *testing.T) {
	t.Parallel()

	var got json.RawMessage
	r, err := NewResolver(validRequest(), func(d json.RawMessage) { got = d })
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	if err := r.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if string(got) != `{"approved":true}` {
		t.Fatalf("decision = %s, want {\"approved\":true}", got)
	}
	if !r.Resolved() {
		t.Fatal("Resolved() = false after Approve")
	}
}

func TestResolverDeclineSerializesDecision(t *testing.T) {
	t.Parallel()

	var got json.RawMessage
	r, err := NewResolver(validRequest(), func(d json.RawMessage) { got = d })
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	if err := r.Decline(); err != nil {
		t.Fatalf("Decline() error = %v", err)
	}
	if string(got) != `{"declined":true}` {
		t.Fatalf("decision = %s, want {\"declined\":true}", got)
	}
}

func TestResolverSingleUse(t *testing.T) {
	t.Parallel()

	calls := 0
	r, err := NewResolver(validRequest(), func(json.RawMessage) { calls++ })
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	if err := r.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := r.Approve(); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second Approve() error = %v, want ErrAlreadyResolved", err)
	}
	if err := r.Decline(); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("Decline() after Approve error = %v, want ErrAlreadyResolved", err)
	}
	if calls != 1 {
		t.Fatalf("callback ran %d times, want 1", calls)
	}
}

func TestResolverConcurrentResolutionRunsCallbackOnce(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	r, err := NewResolver(validRequest(), func(json.RawMessage) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			if approve {
				_ = r.Approve()
			} else {
				_ = r.Decline()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("callback ran %d times, want exactly 1", calls)
	}
}

func TestResolverExposesRequest(t *testing.T) {
	t.Parallel()

	req := validRequest()
	r, err := NewResolver(req, func(json.RawMessage) {})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if got := r.Request(); got != req {
		t.Fatalf("Request() = %+v, want %+v", got, req)
	}
}
