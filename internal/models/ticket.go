package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Known statuses. The set is open: anything else is still a valid ticket.
const (
	TicketStatusConfirmed = "CONFIRMED"
	TicketStatusBoarding  = "BOARDING"
	TicketStatusWaitlist  = "WAITLIST"
	TicketStatusCancelled = "CANCELLED"
)

type Ticket struct {
	TicketCode   string `json:"ticketCode"`
	PRN          string `json:"prn"`
	FullName     string `json:"fullName"`
	Age          int    `json:"age"`
	FromCity     string `json:"fromCity"`
	ToCity       string `json:"toCity"`
	Route        string `json:"route"`
	DepartureISO string `json:"departureISO"`
	ArrivalISO   string `json:"arrivalISO"`
	ETAMinutes   int    `json:"etaMinutes"`
	Status       string `json:"status"`
}

// Validate is used by provisioning before a ticket is written.
func (t Ticket) Validate() error {
	if strings.TrimSpace(t.TicketCode) == "" {
		return errors.New("ticketCode is required")
	}
	if strings.TrimSpace(t.PRN) == "" {
		return errors.New("prn is required")
	}
	if strings.TrimSpace(t.FullName) == "" {
		return errors.New("fullName is required")
	}
	if t.Age < 0 {
		return errors.New("age must be non-negative")
	}
	if t.ETAMinutes < 0 {
		return errors.New("etaMinutes must be non-negative")
	}
	if strings.TrimSpace(t.Status) == "" {
		return errors.New("status is required")
	}

	dep, err := time.Parse(time.RFC3339, t.DepartureISO)
	if err != nil {
		return errors.Wrap(err, "departureISO")
	}
	arr, err := time.Parse(time.RFC3339, t.ArrivalISO)
	if err != nil {
		return errors.Wrap(err, "arrivalISO")
	}
	if arr.Before(dep) {
		return errors.New("arrivalISO is before departureISO")
	}
	return nil
}
