package messages

import (
	"time"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/google/uuid"
)

// TicketIssued is published by provisioning when a ticket is created or re-issued.
type TicketIssued struct {
	EventID  string        `json:"event_id"`
	IssuedAt time.Time     `json:"issued_at"`
	Ticket   models.Ticket `json:"ticket"`
}

func NewTicketIssued(t models.Ticket, now time.Time) TicketIssued {
	return TicketIssued{
		EventID:  uuid.NewString(),
		IssuedAt: now.UTC(),
		Ticket:   t,
	}
}

// Key partitions events by ticket code so re-issues of one ticket stay ordered.
func (m TicketIssued) Key() []byte {
	return []byte(m.Ticket.TicketCode)
}
