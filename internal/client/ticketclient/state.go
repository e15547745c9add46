package ticketclient

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/BearBump/TicketBox/internal/models"
)

// State is what a lookup screen holds. Ticket and Err are never both set,
// and neither is set while Loading.
type State struct {
	Input   string
	Loading bool
	Ticket  *models.Ticket
	Err     string
}

func (s *State) SetInput(text string) {
	s.Input = text
}

// Lookup runs one lookup for the current input and records the outcome.
func (s *State) Lookup(ctx context.Context, tr Transport) {
	code := strings.TrimSpace(s.Input)
	if code == "" {
		s.Ticket = nil
		s.Err = MessageEmptyInput
		return
	}

	s.Loading = true
	s.Ticket = nil
	s.Err = ""
	defer func() { s.Loading = false }()

	t, err := tr.Lookup(ctx, code)
	if err != nil {
		s.Err = UserMessage(err)
		return
	}
	s.Ticket = t
}

// Clear resets input, loading flag, ticket and error together.
func (s *State) Clear() {
	*s = State{}
}

// UserMessage maps a transport error to the text shown to the user.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case stderrors.As(err, &apiErr):
		return apiErr.Message
	case stderrors.Is(err, ErrNetwork):
		return MessageNetwork
	default:
		return MessageGeneric
	}
}
