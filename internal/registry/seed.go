package registry

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const seedBatchSize = 1000

const (
	insertUnitSQL = `INSERT INTO registry.local_bodies (code, name, type, district_name, ward_count)
		VALUES (:code, :name, :type, :district_name, :ward_count)`
	insertWardSQL = `INSERT INTO registry.wards (code, name, number, lb_code, total_voters)
		VALUES (:code, :name, :number, :lb_code, :total_voters)`
	insertStationSQL = `INSERT INTO registry.polling_stations (number, name, ward_code, lb_code)
		VALUES (:number, :name, :ward_code, :lb_code)`
)

// SeedCounts reports rows written per table.
type SeedCounts struct {
	Units    int64
	Wards    int64
	Stations int64
}

// Seeder bulk-replaces the registry tables in one transaction.
type Seeder struct {
	db      *sqlx.DB
	lockKey int64
}

// NewSeeder returns a seeder. A non-zero lockKey serialises concurrent seeds
// with a transaction-scoped advisory lock.
func NewSeeder(d *sqlx.DB, lockKey int64) *Seeder {
	return &Seeder{db: d, lockKey: lockKey}
}

// Replace deletes the current snapshot and inserts reg in its place.
func (s *Seeder) Replace(ctx context.Context, reg *Registry) (SeedCounts, error) {
	var counts SeedCounts

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.lockKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, s.lockKey); err != nil {
			return counts, fmt.Errorf("advisory lock: %w", err)
		}
	}

	for _, table := range []string{"registry.polling_stations", "registry.wards", "registry.local_bodies"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return counts, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if counts.Units, err = insertBatches(ctx, tx, insertUnitSQL, reg.Units()); err != nil {
		return counts, fmt.Errorf("insert local bodies: %w", err)
	}
	if counts.Wards, err = insertBatches(ctx, tx, insertWardSQL, reg.Wards()); err != nil {
		return counts, fmt.Errorf("insert wards: %w", err)
	}
	if counts.Stations, err = insertBatches(ctx, tx, insertStationSQL, reg.PollingStations()); err != nil {
		return counts, fmt.Errorf("insert polling stations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit: %w", err)
	}
	return counts, nil
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) (int64, error) {
	var total int64
	for start := 0; start < len(rows); start += seedBatchSize {
		end := min(start+seedBatchSize, len(rows))
		res, err := tx.NamedExecContext(ctx, query, rows[start:end])
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
