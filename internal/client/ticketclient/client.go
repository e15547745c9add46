// Package ticketclient calls the lookup service and tracks what a lookup screen shows.
package ticketclient

import (
	"context"
	stderrors "errors"

	"github.com/BearBump/TicketBox/internal/models"
)

const (
	MessageEmptyInput = "Enter your PRN or Ticket Code."
	MessageNetwork    = "Network error. Try again."
	MessageGeneric    = "Something went wrong."
)

// ErrNetwork means the service could not be reached at all.
var ErrNetwork = stderrors.New(MessageNetwork)

// APIError carries a message the service returned for the user, shown verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Transport interface {
	Lookup(ctx context.Context, code string) (*models.Ticket, error)
}
