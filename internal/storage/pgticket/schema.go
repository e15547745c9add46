package pgticket

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS tickets (
  id BIGSERIAL PRIMARY KEY,
  ticket_code TEXT NOT NULL,
  prn TEXT NOT NULL,
  full_name TEXT NOT NULL,
  age INT NOT NULL CHECK (age >= 0),
  from_city TEXT NOT NULL,
  to_city TEXT NOT NULL,
  route TEXT NOT NULL,
  departure_iso TEXT NOT NULL,
  arrival_iso TEXT NOT NULL,
  eta_minutes INT NOT NULL CHECK (eta_minutes >= 0),
  status TEXT NOT NULL
)`,
		// Lookups compare upper-cased values, so uniqueness is enforced on the same expressions.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_tickets_ticket_code ON tickets (upper(ticket_code))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_tickets_prn ON tickets (upper(prn))`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}

// checkSchema fails fast when the service starts against a database that was never provisioned.
func (s *Storage) checkSchema(ctx context.Context) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT to_regclass('tickets') IS NOT NULL`).Scan(&exists); err != nil {
		return errors.Wrap(err, "check schema")
	}
	if !exists {
		return errors.New("tickets table not found: provision the database before starting without init_schema")
	}
	return nil
}
