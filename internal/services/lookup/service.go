package lookup

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
	"github.com/pkg/errors"
)

const minCodeLength = 3

const (
	MessageInvalidInput     = "Please enter a valid PRN or Ticket Code."
	MessageNotFound         = "No ticket found for that PRN / Ticket Code."
	MessageTransportFailure = "Something went wrong. Try again."
)

var (
	ErrInvalidInput = stderrors.New(MessageInvalidInput)
	ErrNotFound     = stderrors.New(MessageNotFound)
)

type Repository interface {
	FindByCode(ctx context.Context, code string) (*models.Ticket, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup finds a ticket by ticket code or PRN. It never writes.
func (s *Service) Lookup(ctx context.Context, identifier string) (*models.Ticket, error) {
	code := strings.TrimSpace(identifier)
	if utf8.RuneCountInString(code) < minCodeLength {
		return nil, ErrInvalidInput
	}

	t, err := s.repo.FindByCode(ctx, code)
	if stderrors.Is(err, pgticket.ErrTicketNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find ticket")
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// IsTransportFailure reports whether err is a storage or network failure rather than a user error.
func IsTransportFailure(err error) bool {
	return err != nil && !stderrors.Is(err, ErrInvalidInput) && !stderrors.Is(err, ErrNotFound)
}

// MessageFor returns the text shown to the user for a lookup error.
func MessageFor(err error) string {
	switch {
	case stderrors.Is(err, ErrInvalidInput):
		return MessageInvalidInput
	case stderrors.Is(err, ErrNotFound):
		return MessageNotFound
	default:
		return MessageTransportFailure
	}
}
