package messages

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewTicketIssued(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	m := NewTicketIssued(models.Ticket{TicketCode: "TCK-1Z9Q7M", PRN: "PRN123456"}, now)

	_, err := uuid.Parse(m.EventID)
	require.NoError(t, err)
	require.Equal(t, time.UTC, m.IssuedAt.Location())
	require.True(t, now.Equal(m.IssuedAt))
	require.Equal(t, []byte("TCK-1Z9Q7M"), m.Key())

	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.Contains(t, string(b), `"ticket":{"ticketCode":"TCK-1Z9Q7M","prn":"PRN123456"`)
}
