// Package presenter derives the human-readable fields shown for a found ticket.
// Everything here is pure: no I/O, and no input makes it fail.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/BearBump/TicketBox/internal/models"
)

// DateTimeLayout is the long form used on the lookup page: weekday, day, month, year, hour:minute.
const DateTimeLayout = "Mon, 02 Jan 2006, 03:04 pm"

type StatusCategory string

const (
	CategoryConfirmed StatusCategory = "confirmed"
	CategoryBoarding  StatusCategory = "boarding"
	CategoryWaitlist  StatusCategory = "waitlist"
	CategoryCancelled StatusCategory = "cancelled"
	CategoryUnknown   StatusCategory = "unknown"
)

type View struct {
	Ticket models.Ticket

	DepartureDisplay string
	ArrivalDisplay   string
	DurationDisplay  string
	// ETADisplay renders the same stored etaMinutes as DurationDisplay.
	ETADisplay string
	// ScheduledDisplay is arrival minus departure; empty if either timestamp is malformed.
	ScheduledDisplay string
	StatusCategory   StatusCategory
}

func Present(t models.Ticket) View {
	v := View{
		Ticket:           t,
		DepartureDisplay: FormatTimestamp(t.DepartureISO),
		ArrivalDisplay:   FormatTimestamp(t.ArrivalISO),
		DurationDisplay:  FormatMinutes(t.ETAMinutes),
		ETADisplay:       FormatMinutes(t.ETAMinutes),
		StatusCategory:   CategoryOf(t.Status),
	}
	if m, ok := ScheduledMinutes(t.DepartureISO, t.ArrivalISO); ok {
		v.ScheduledDisplay = FormatMinutes(m)
	}
	return v
}

// FormatMinutes renders "Hh Mm" from one hour up, "Mm" below it.
func FormatMinutes(m int) string {
	if m < 0 {
		m = 0
	}
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

// FormatTimestamp keeps the offset the timestamp was issued with.
// Input that is not RFC 3339 is returned unchanged.
func FormatTimestamp(iso string) string {
	ts, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return ts.Format(DateTimeLayout)
}

func ScheduledMinutes(departureISO, arrivalISO string) (int, bool) {
	dep, err := time.Parse(time.RFC3339, departureISO)
	if err != nil {
		return 0, false
	}
	arr, err := time.Parse(time.RFC3339, arrivalISO)
	if err != nil {
		return 0, false
	}
	m := int(arr.Sub(dep).Round(time.Minute) / time.Minute)
	if m < 0 {
		m = 0
	}
	return m, true
}

func CategoryOf(status string) StatusCategory {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case models.TicketStatusConfirmed:
		return CategoryConfirmed
	case models.TicketStatusBoarding:
		return CategoryBoarding
	case models.TicketStatusWaitlist:
		return CategoryWaitlist
	case models.TicketStatusCancelled:
		return CategoryCancelled
	default:
		return CategoryUnknown
	}
}
