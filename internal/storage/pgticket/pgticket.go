package pgticket

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Options struct {
	// ReadOnly marks every transaction read-only on the server side.
	ReadOnly bool
	// InitSchema creates the tickets table and indexes. Not allowed with ReadOnly.
	InitSchema bool
}

type Storage struct {
	db       *pgxpool.Pool
	readOnly bool
}

func New(ctx context.Context, connString string, opts Options) (*Storage, error) {
	if opts.ReadOnly && opts.InitSchema {
		return nil, errors.New("schema creation is not allowed in read-only mode")
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "parse pg config")
	}
	if opts.ReadOnly {
		cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	}

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect pg")
	}

	s := &Storage{db: db, readOnly: opts.ReadOnly}
	if opts.InitSchema {
		err = s.initSchema(ctx)
	} else {
		err = s.checkSchema(ctx)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) ReadOnly() bool {
	return s.readOnly
}

func (s *Storage) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.Ping(ctx), "ping pg")
}

func (s *Storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
