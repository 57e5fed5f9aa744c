package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// UserAllocation lists the users an order's tickets should be issued to,
// in order. Tickets beyond the list go to the order owner.
type UserAllocation struct {
	IDs []uint `json:"ids"`
}

// OrderMeta is the per-order metadata blob. It used to be an open key/value
// map in older deployments; the flags the engine actually branches on are
// now explicit fields so the reservation and finalize paths stay exhaustive.
type OrderMeta struct {
	// Gifted and Paper mark orders whose line items bypass the
	// availability check (comps and box-office paper sales).
	Gifted bool `json:"gifted,omitempty"`
	Paper  bool `json:"paper,omitempty"`

	Allocation *UserAllocation `json:"users_allocate,omitempty"`

	// Audit stamps written by finalize and mail delivery.
	TicketsCreated string `json:"tickets_created,omitempty"`
	TicketsSent    string `json:"tickets_sent,omitempty"`
}

// SkipAvailabilityCheck reports whether line-item mutations on this order
// may exceed the derived availability.
func (m OrderMeta) SkipAvailabilityCheck() bool {
	return m.Gifted || m.Paper
}

func (m OrderMeta) Value() (driver.Value, error) {
	valueString, err := json.Marshal(m)
	return string(valueString), err
}

func (m *OrderMeta) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, m); err != nil {
		return err
	}
	return nil
}
