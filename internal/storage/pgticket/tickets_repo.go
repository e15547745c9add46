package pgticket

import (
	"context"
	stderrors "errors"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

var ErrTicketNotFound = stderrors.New("ticket not found")

// ErrTicketConflict means the ticket collides with a different stored ticket,
// e.g. its PRN already belongs to another ticket code. Retrying cannot help.
var ErrTicketConflict = stderrors.New("ticket conflicts with a stored ticket")

const uniqueViolation = "23505"

// IsConflict reports whether err is ErrTicketConflict or a raw unique violation.
func IsConflict(err error) bool {
	if stderrors.Is(err, ErrTicketConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const selectTicketByCode = `
SELECT
  ticket_code, prn, full_name, age,
  from_city, to_city, route,
  departure_iso, arrival_iso, eta_minutes, status
FROM tickets
WHERE upper(ticket_code) = upper($1) OR upper(prn) = upper($1)
LIMIT 1
`

// FindByCode matches the identifier against both the ticket code and the PRN, ignoring case.
func (s *Storage) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.QueryRow(ctx, selectTicketByCode, code).Scan(
		&t.TicketCode, &t.PRN, &t.FullName, &t.Age,
		&t.FromCity, &t.ToCity, &t.Route,
		&t.DepartureISO, &t.ArrivalISO, &t.ETAMinutes, &t.Status,
	)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select ticket")
	}
	return &t, nil
}

// UpsertTickets inserts tickets or replaces the row with the same ticket code.
// Used by provisioning only; the lookup path never writes.
func (s *Storage) UpsertTickets(ctx context.Context, items []models.Ticket) error {
	if s.readOnly {
		return errors.New("storage is read-only")
	}
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range items {
		_, err := tx.Exec(ctx, `
INSERT INTO tickets (
  ticket_code, prn, full_name, age,
  from_city, to_city, route,
  departure_iso, arrival_iso, eta_minutes, status
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT ((upper(ticket_code)))
DO UPDATE SET
  ticket_code = EXCLUDED.ticket_code,
  prn = EXCLUDED.prn,
  full_name = EXCLUDED.full_name,
  age = EXCLUDED.age,
  from_city = EXCLUDED.from_city,
  to_city = EXCLUDED.to_city,
  route = EXCLUDED.route,
  departure_iso = EXCLUDED.departure_iso,
  arrival_iso = EXCLUDED.arrival_iso,
  eta_minutes = EXCLUDED.eta_minutes,
  status = EXCLUDED.status
`, t.TicketCode, t.PRN, t.FullName, t.Age,
			t.FromCity, t.ToCity, t.Route,
			t.DepartureISO, t.ArrivalISO, t.ETAMinutes, t.Status)
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.Wrapf(ErrTicketConflict, "upsert ticket %s (%s)", t.TicketCode, pgErr.ConstraintName)
		}
		if err != nil {
			return errors.Wrapf(err, "upsert ticket %s", t.TicketCode)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}
