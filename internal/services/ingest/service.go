package ingest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/BearBump/TicketBox/internal/broker/messages"
	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
	"github.com/pkg/errors"
)

// ErrRejected marks events that can never be applied. Consumers skip them instead of retrying.
var ErrRejected = stderrors.New("ticket.issued event rejected")

type Repository interface {
	UpsertTickets(ctx context.Context, items []models.Ticket) error
}

type Stats struct {
	Applied       int64  `json:"applied"`
	Rejected      int64  `json:"rejected"`
	LastEventID   string `json:"lastEventId,omitempty"`
	LastAppliedAt string `json:"lastAppliedAt,omitempty"`
}

// Service writes tickets announced on the ticket.issued topic into the store.
type Service struct {
	repo Repository

	applied  atomic.Int64
	rejected atomic.Int64
	last     atomic.Pointer[lastApplied]
}

type lastApplied struct {
	eventID string
	at      time.Time
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// HandleMessage decodes a raw kafka value and applies it.
func (s *Service) HandleMessage(ctx context.Context, value []byte) error {
	var m messages.TicketIssued
	if err := json.Unmarshal(value, &m); err != nil {
		s.rejected.Add(1)
		return errors.Wrapf(ErrRejected, "decode: %v", err)
	}
	return s.Apply(ctx, m)
}

func (s *Service) Apply(ctx context.Context, m messages.TicketIssued) error {
	if err := m.Ticket.Validate(); err != nil {
		s.rejected.Add(1)
		return errors.Wrapf(ErrRejected, "event %s: %v", m.EventID, err)
	}
	if err := s.repo.UpsertTickets(ctx, []models.Ticket{m.Ticket}); err != nil {
		if pgticket.IsConflict(err) {
			s.rejected.Add(1)
			return errors.Wrapf(ErrRejected, "event %s: %v", m.EventID, err)
		}
		return err
	}
	s.applied.Add(1)
	s.last.Store(&lastApplied{eventID: m.EventID, at: time.Now().UTC()})
	return nil
}

func (s *Service) Stats() Stats {
	st := Stats{
		Applied:  s.applied.Load(),
		Rejected: s.rejected.Load(),
	}
	if l := s.last.Load(); l != nil {
		st.LastEventID = l.eventID
		st.LastAppliedAt = l.at.Format(time.RFC3339)
	}
	return st
}
