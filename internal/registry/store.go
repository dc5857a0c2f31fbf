package registry

import (
	"context"
	"fmt"

	"github.com/EmpoweredVote/LSG-Trends/internal/db"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Store persists the registry snapshot in the "registry" schema.
type Store struct {
	db *gorm.DB
}

func NewStore(d *gorm.DB) *Store {
	return &Store{db: d}
}

// Migrate ensures the schema and tables exist.
func (s *Store) Migrate() error {
	if err := db.EnsureSchema(s.db, "registry"); err != nil {
		return fmt.Errorf("ensure schema registry: %w", err)
	}
	if err := s.db.AutoMigrate(&AdministrativeUnit{}, &WardMeta{}, &PollingStation{}); err != nil {
		return fmt.Errorf("auto-migrate registry tables: %w", err)
	}
	return nil
}

// Load reads the whole snapshot.
func (s *Store) Load(ctx context.Context) (*Registry, error) {
	tx := s.db.WithContext(ctx)

	var units []AdministrativeUnit
	if err := tx.Order("district_name, code").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("load local bodies: %w", err)
	}

	var wards []WardMeta
	if err := tx.Order("lb_code, number").Find(&wards).Error; err != nil {
		return nil, fmt.Errorf("load wards: %w", err)
	}

	var stations []PollingStation
	if err := tx.Order("lb_code, number").Find(&stations).Error; err != nil {
		return nil, fmt.Errorf("load polling stations: %w", err)
	}

	return New(units, wards, stations), nil
}

// UnitsByCodes fetches the named units in code order.
func (s *Store) UnitsByCodes(ctx context.Context, codes []string) ([]AdministrativeUnit, error) {
	var units []AdministrativeUnit
	if len(codes) == 0 {
		return units, nil
	}
	err := s.db.WithContext(ctx).
		Where("code = ANY(?)", pq.Array(codes)).
		Order("code").
		Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("load units by code: %w", err)
	}
	return units, nil
}
