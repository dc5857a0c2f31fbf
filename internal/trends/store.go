package trends

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/db"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WardInfo is the jsonb column holding a summary's resolved wards.
type WardInfo map[int]results.WardResult

func (w WardInfo) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[int]results.WardResult(w))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *WardInfo) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*w = WardInfo{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
	m := map[int]results.WardResult{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*w = m
	return nil
}

// SummaryRecord is one persisted local-body summary of the latest snapshot.
type SummaryRecord struct {
	LBCode        string         `gorm:"primaryKey;size:20;column:lb_code"`
	SnapshotID    string         `gorm:"index;size:36;not null;column:snapshot_id"`
	LeadingFront  string         `gorm:"size:8;column:leading_front"`
	WardCount     int            `gorm:"column:ward_count"`
	WardsDeclared int            `gorm:"column:wards_declared"`
	LDFSeats      int            `gorm:"column:ldf_seats"`
	UDFSeats      int            `gorm:"column:udf_seats"`
	NDASeats      int            `gorm:"column:nda_seats"`
	INDSeats      int            `gorm:"column:ind_seats"`
	SeatFronts    pq.StringArray `gorm:"type:text[];column:seat_fronts"`
	HungWards     pq.Int64Array  `gorm:"type:integer[];column:hung_wards"`
	WardInfo      WardInfo       `gorm:"type:jsonb;column:ward_info"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (SummaryRecord) TableName() string {
	return "trends.local_body_summaries"
}

func toRecord(snapshotID string, s results.LocalBodySummary) SummaryRecord {
	rec := SummaryRecord{
		LBCode:        s.LBCode,
		SnapshotID:    snapshotID,
		LeadingFront:  s.LeadingFront,
		WardCount:     s.WardCount,
		WardsDeclared: s.WardsDeclared,
		LDFSeats:      s.LDFSeats,
		UDFSeats:      s.UDFSeats,
		NDASeats:      s.NDASeats,
		INDSeats:      s.INDSeats,
		SeatFronts:    pq.StringArray{},
		HungWards:     pq.Int64Array{},
		WardInfo:      WardInfo(s.WardInfo),
	}
	for _, f := range results.SeatFronts {
		if s.Seats(f) > 0 {
			rec.SeatFronts = append(rec.SeatFronts, string(f))
		}
	}
	for _, n := range s.HungWards() {
		rec.HungWards = append(rec.HungWards, int64(n))
	}
	return rec
}

func (r SummaryRecord) summary() results.LocalBodySummary {
	wards := map[int]results.WardResult(r.WardInfo)
	if wards == nil {
		wards = map[int]results.WardResult{}
	}
	return results.LocalBodySummary{
		LBCode:        r.LBCode,
		LeadingFront:  r.LeadingFront,
		WardCount:     r.WardCount,
		WardsDeclared: r.WardsDeclared,
		LDFSeats:      r.LDFSeats,
		UDFSeats:      r.UDFSeats,
		NDASeats:      r.NDASeats,
		INDSeats:      r.INDSeats,
		WardInfo:      wards,
	}
}

// SummaryStore persists the latest derivation's summaries in Postgres. Only
// one snapshot is kept: saving a snapshot removes rows of older ones.
type SummaryStore struct {
	db *gorm.DB
}

func NewSummaryStore(d *gorm.DB) *SummaryStore {
	return &SummaryStore{db: d}
}

func (s *SummaryStore) Migrate() error {
	if err := db.EnsureSchema(s.db, "trends"); err != nil {
		return err
	}
	return s.db.AutoMigrate(&SummaryRecord{})
}

func (s *SummaryStore) SaveLatest(ctx context.Context, snapshotID string, summaries []results.LocalBodySummary) error {
	t0 := time.Now()
	records := make([]SummaryRecord, 0, len(summaries))
	for _, sm := range summaries {
		records = append(records, toRecord(snapshotID, sm))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "lb_code"}},
				UpdateAll: true,
			}).CreateInBatches(records, 500).Error; err != nil {
				return err
			}
		}
		return tx.Where("snapshot_id <> ?", snapshotID).Delete(&SummaryRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("save summaries %s: %w", snapshotID, err)
	}
	logger.Upsert("trends", len(records), time.Since(t0))
	return nil
}

func (s *SummaryStore) LoadLatest(ctx context.Context) (string, []results.LocalBodySummary, error) {
	var records []SummaryRecord
	if err := s.db.WithContext(ctx).Order("lb_code").Find(&records).Error; err != nil {
		return "", nil, err
	}
	if len(records) == 0 {
		return "", nil, ErrCacheMiss
	}
	out := make([]results.LocalBodySummary, 0, len(records))
	for _, r := range records {
		out = append(out, r.summary())
	}
	return records[0].SnapshotID, out, nil
}

// Load returns the stored summaries of the given codes, or all of them when
// codes is empty.
func (s *SummaryStore) Load(ctx context.Context, codes []string) ([]results.LocalBodySummary, error) {
	q := s.db.WithContext(ctx).Order("lb_code")
	if len(codes) > 0 {
		q = q.Where("lb_code = ANY(?)", pq.Array(codes))
	}
	var records []SummaryRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]results.LocalBodySummary, 0, len(records))
	for _, r := range records {
		out = append(out, r.summary())
	}
	return out, nil
}
