package checkout

import (
	"errors"

	"github.com/sokofresh/soko-api/internal/orders"
)

var (
	ErrIncompleteStep  = errors.New("checkout: required fields missing for this step")
	ErrStepNotReached  = errors.New("checkout: step not completed yet")
	ErrAlreadyFinished = errors.New("checkout: already finished")
)

// Session is one shopper's progress through the wizard, persisted between
// requests.
type Session struct {
	CustomerID string `json:"customer_id"`
	Step       Step   `json:"step"`
	// Completed marks steps the shopper has advanced past; direct jumps
	// are only allowed onto these.
	Completed map[Step]bool `json:"completed"`

	Mode           orders.FulfilmentMode `json:"mode,omitempty"`
	CountyID       string                `json:"county_id,omitempty"`
	ConstituencyID string                `json:"constituency_id,omitempty"`
	StationID      string                `json:"station_id,omitempty"`
	Instructions   string                `json:"instructions,omitempty"`

	PaymentMethod string `json:"payment_method,omitempty"`
	PaymentPhone  string `json:"payment_phone,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

func NewSession(customerID string) Session {
	return Session{
		CustomerID: customerID,
		Step:       StepProducts,
		Completed:  map[Step]bool{},
	}
}

// CanProceed reports whether the active step's required fields are set.
func (s *Session) CanProceed() bool {
	switch s.Step {
	case StepProducts:
		return true
	case StepLocation:
		switch s.Mode {
		case orders.ModePickup:
			return s.StationID != ""
		case orders.ModeDelivery:
			return s.CountyID != "" && s.ConstituencyID != ""
		}
		return false
	case StepDelivery:
		return true
	case StepPayment:
		// payment only advances through a verified charge, via Confirm
		return false
	}
	return false
}

// Next moves forward one step, blocking while required fields are missing.
func (s *Session) Next() error {
	if s.Step == StepSuccess {
		return ErrAlreadyFinished
	}
	if s.Step == StepPayment {
		// only Confirm finishes the wizard
		return ErrIncompleteStep
	}
	if !s.CanProceed() {
		return ErrIncompleteStep
	}
	s.Completed[s.Step] = true
	s.Step = next(s.Step)
	return nil
}

// Back moves one step backwards. No-op at the first step and after success.
func (s *Session) Back() {
	s.Step = prev(s.Step)
}

// JumpTo allows a direct jump only onto an already-completed step.
func (s *Session) JumpTo(target Step) error {
	if s.Step == StepSuccess {
		return ErrAlreadyFinished
	}
	if !s.Completed[target] {
		return ErrStepNotReached
	}
	s.Step = target
	return nil
}

// SetPickup selects a station; constituencyID is the station's constituency,
// captured as the sub-location.
func (s *Session) SetPickup(countyID, stationID, constituencyID string) {
	s.Mode = orders.ModePickup
	s.CountyID = countyID
	s.StationID = stationID
	s.ConstituencyID = constituencyID
	s.Instructions = "" // instructions are a delivery-only field
}

// SetDelivery selects home delivery to a constituency.
func (s *Session) SetDelivery(countyID, constituencyID string) {
	s.Mode = orders.ModeDelivery
	s.CountyID = countyID
	s.ConstituencyID = constituencyID
	s.StationID = ""
}

// LocationID resolves the single location identifier the order carries:
// station for pickup, constituency for delivery.
func (s *Session) LocationID() string {
	if s.Mode == orders.ModePickup {
		return s.StationID
	}
	return s.ConstituencyID
}
