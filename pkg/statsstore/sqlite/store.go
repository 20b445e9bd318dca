package sqlite

//go:generate go run ./schemadump -path schema.sql
//go:generate sqlc generate

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"codeberg.org/miketth/ergolayer/pkg/statsstore/sqlite/migrations"
	"context"
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"time"
)

// StatsStore keeps press counts in sqlite. Every store opened is recorded as a
// session so counts can be told apart per daemon run.
type StatsStore struct {
	db      *sql.DB
	querier *Queries
	keymap  string
	session uuid.UUID
}

func NewStatsStore(filename, keymap string, log *zap.SugaredLogger) (*StatsStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	store := &StatsStore{
		db:      db,
		querier: New(db),
		keymap:  keymap,
		session: uuid.New(),
	}

	if err := store.querier.CreateSession(context.Background(), CreateSessionParams{
		ID:        store.session.String(),
		Keymap:    keymap,
		StartedAt: time.Now().Unix(),
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite insert session: %w", err)
	}

	log.Infow("stats session started", "session", store.session, "keymap", keymap)

	return store, nil
}

func (s *StatsStore) Close() error {
	return s.db.Close()
}

func (s *StatsStore) Session() uuid.UUID {
	return s.session
}

func (s *StatsStore) AddPresses(counts []ergolayer.PressCount) (err error) {
	if len(counts) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	q := s.querier.WithTx(tx)
	var total int64
	for _, c := range counts {
		if err := q.AddPresses(ctx, AddPressesParams{
			Keymap: s.keymap,
			Layer:  int64(c.Layer),
			Row:    int64(c.Pos.Row),
			Col:    int64(c.Pos.Col),
			Count:  c.Count,
		}); err != nil {
			return fmt.Errorf("sqlite upsert presses: %w", err)
		}
		total += c.Count
	}

	if err := q.AddSessionPresses(ctx, AddSessionPressesParams{
		Presses: total,
		ID:      s.session.String(),
	}); err != nil {
		return fmt.Errorf("sqlite update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *StatsStore) GetPresses(layer int) ([]ergolayer.PressCount, error) {
	rows, err := s.querier.GetPresses(context.Background(), GetPressesParams{
		Keymap: s.keymap,
		Layer:  int64(layer),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	ret := make([]ergolayer.PressCount, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, ergolayer.PressCount{
			Layer: int(row.Layer),
			Pos:   keymap.Position{Row: int(row.Row), Col: int(row.Col)},
			Count: row.Count,
		})
	}

	return ret, nil
}

// SessionPresses returns how many presses the current session has stored.
func (s *StatsStore) SessionPresses() (int64, error) {
	session, err := s.querier.GetSession(context.Background(), s.session.String())
	if err != nil {
		return 0, fmt.Errorf("sqlite select session: %w", err)
	}
	return session.Presses, nil
}
