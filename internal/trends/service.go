package trends

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/metrics"
	"github.com/EmpoweredVote/LSG-Trends/internal/palette"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/EmpoweredVote/LSG-Trends/internal/rollup"
	"github.com/EmpoweredVote/LSG-Trends/internal/view"
	"go.uber.org/zap"
)

var (
	ErrNoSnapshot        = errors.New("no trend snapshot derived yet")
	ErrLocalBodyNotFound = errors.New("local body not found")
	ErrUnknownDistrict   = errors.New("unknown district")
)

// Options wires a Service. Registry, Source and Geo are required; the rest
// fall back to defaults or are skipped when nil.
type Options struct {
	Registry   *registry.Registry
	Source     TrendSource
	Geo        geo.Source
	Classifier *results.Classifier
	Joiner     *geo.Joiner
	Districts  *geo.DistrictNames
	Caches     []SummaryCache
	Now        func() time.Time
}

// Service owns the latest derivation. Refresh replaces it; readers get the
// current pointer and never block on a running refresh.
type Service struct {
	reg        *registry.Registry
	source     TrendSource
	geo        geo.Source
	classifier *results.Classifier
	joiner     *geo.Joiner
	districts  *geo.DistrictNames
	caches     []SummaryCache
	now        func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[Derivation]
}

func NewService(opts Options) *Service {
	s := &Service{
		reg:        opts.Registry,
		source:     opts.Source,
		geo:        opts.Geo,
		classifier: opts.Classifier,
		joiner:     opts.Joiner,
		districts:  opts.Districts,
		now:        opts.Now,
	}
	for _, c := range opts.Caches {
		if c != nil {
			s.caches = append(s.caches, c)
		}
	}
	if s.classifier == nil {
		s.classifier = results.DefaultClassifier()
	}
	if s.joiner == nil {
		s.joiner = geo.NewJoiner(geo.DefaultKeys, nil)
	}
	if s.districts == nil {
		s.districts = geo.NewDistrictNames(geo.DefaultDistrictAliases)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Registry() *registry.Registry { return s.reg }

// Current returns the latest derivation, possibly stale.
func (s *Service) Current() (*Derivation, error) {
	d := s.current.Load()
	if d == nil {
		return nil, ErrNoSnapshot
	}
	return d, nil
}

// Refresh reads the trend source and derives a new snapshot. An unchanged
// snapshot keeps the current derivation. When the source fails the current
// derivation is kept and marked stale; with none in memory the caches are
// tried. The source error is returned in both cases.
func (s *Service) Refresh(ctx context.Context) (*Derivation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t0 := time.Now()
	rows, err := s.source.Rows(ctx)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("%s: %w", s.source.Name(), err))
	}
	id, err := SnapshotID(rows)
	if err != nil {
		return s.fail(ctx, err)
	}

	if cur := s.current.Load(); cur != nil && cur.SnapshotID == id && !cur.Stale {
		metrics.DerivationsTotal.WithLabelValues("unchanged").Inc()
		return cur, nil
	}

	snap := results.BuildSnapshot(rows, s.classifier)
	d, err := Derive(ctx, s.reg, snap, id, s.now())
	if err != nil {
		return s.fail(ctx, err)
	}
	s.current.Store(d)
	d.observe()

	elapsed := time.Since(t0)
	metrics.DerivationsTotal.WithLabelValues("ok").Inc()
	metrics.DerivationDurationMs.Observe(float64(elapsed.Milliseconds()))
	logger.Derivation(id, len(d.Summaries), d.Wards, elapsed)
	if len(d.Orphans) > 0 {
		logger.L().Warn("trend codes missing from registry",
			zap.String("component", "trends"),
			zap.Int("count", len(d.Orphans)),
			zap.Strings("codes", d.Orphans),
		)
	}

	for _, c := range s.caches {
		if err := c.SaveLatest(ctx, id, d.Summaries); err != nil {
			logger.L().Warn("save summaries failed", zap.String("component", "trends"), zap.Error(err))
		}
	}
	return d, nil
}

func (s *Service) fail(ctx context.Context, err error) (*Derivation, error) {
	metrics.DerivationsTotal.WithLabelValues("error").Inc()
	logger.L().Error("refresh failed", zap.String("component", "trends"), zap.Error(err))

	if cur := s.current.Load(); cur != nil {
		stale := cur.staleCopy()
		s.current.Store(stale)
		return stale, err
	}

	for _, c := range s.caches {
		id, summaries, cerr := c.LoadLatest(ctx)
		if cerr != nil {
			if !errors.Is(cerr, ErrCacheMiss) {
				logger.L().Warn("load cached summaries failed", zap.String("component", "trends"), zap.Error(cerr))
			}
			continue
		}
		d, aerr := assemble(ctx, s.reg, id, s.inRegistryOrder(summaries), s.now())
		if aerr != nil {
			continue
		}
		d.Stale = true
		s.current.Store(d)
		logger.L().Info("restored cached summaries",
			zap.String("component", "trends"),
			zap.String("snapshot", id),
			zap.Int("bodies", len(d.Summaries)),
		)
		return d, err
	}
	return nil, err
}

// inRegistryOrder drops summaries of unknown codes and sorts the rest the
// way the registry lists its units.
func (s *Service) inRegistryOrder(summaries []results.LocalBodySummary) []results.LocalBodySummary {
	byCode := make(map[string]results.LocalBodySummary, len(summaries))
	for _, sm := range summaries {
		if _, dup := byCode[sm.LBCode]; !dup {
			byCode[sm.LBCode] = sm
		}
	}
	out := make([]results.LocalBodySummary, 0, len(byCode))
	for _, u := range s.reg.Units() {
		if sm, ok := byCode[u.Code]; ok {
			out = append(out, sm)
		}
	}
	return out
}

// Summaries returns every summary, or those of one district.
func (s *Service) Summaries(district string) ([]results.LocalBodySummary, *Derivation, error) {
	d, err := s.Current()
	if err != nil {
		return nil, nil, err
	}
	if district == "" {
		return d.Summaries, d, nil
	}
	name, err := s.district(d, district)
	if err != nil {
		return nil, d, err
	}
	return d.InDistrict(s.reg, name), d, nil
}

// WardView is a resolved ward with its display status and colour.
type WardView struct {
	results.WardResult
	Status results.WardStatus `json:"status"`
	Fill   string             `json:"fill"`
	Margin int                `json:"margin"`
}

// LocalBodyDetail is everything the local-body view shows.
type LocalBodyDetail struct {
	Unit            registry.AdministrativeUnit `json:"unit"`
	Summary         results.LocalBodySummary    `json:"summary"`
	Fill            string                      `json:"fill"`
	Declared        string                      `json:"declared"`
	TotalVoters     int                         `json:"totalVoters"`
	PollingStations int                         `json:"pollingStations"`
	Wards           []WardView                  `json:"wards"`
}

// LocalBody returns the detail of one registry unit. A unit without trend
// data gets an empty N/A summary.
func (s *Service) LocalBody(lbCode string) (LocalBodyDetail, *Derivation, error) {
	d, err := s.Current()
	if err != nil {
		return LocalBodyDetail{}, nil, err
	}
	u, ok := s.reg.Unit(lbCode)
	if !ok {
		return LocalBodyDetail{}, d, fmt.Errorf("%s: %w", lbCode, ErrLocalBodyNotFound)
	}
	sm, ok := d.Summary(lbCode)
	if !ok {
		sm = results.SummarizeLocalBody(u, nil)
	}

	detail := LocalBodyDetail{
		Unit:            u,
		Summary:         sm,
		Fill:            palette.BodyFill(sm.LeadingFront),
		Declared:        fmt.Sprintf("%d of %d", sm.WardsDeclared, sm.WardCount),
		TotalVoters:     s.reg.TotalVoters(u.Code),
		PollingStations: s.reg.PollingStationCount(u),
		Wards:           make([]WardView, 0, len(sm.WardInfo)),
	}
	for _, w := range sm.Wards() {
		detail.Wards = append(detail.Wards, WardView{
			WardResult: w,
			Status:     w.Status(),
			Fill:       palette.WardFill(w),
			Margin:     w.Margin(),
		})
	}
	return detail, d, nil
}

// StateStats returns the state-scope tiers in the tab's presentation order.
func (s *Service) StateStats(tab view.Tab) ([]rollup.Tier, *Derivation, error) {
	d, err := s.Current()
	if err != nil {
		return nil, nil, err
	}
	return rollup.Ordered(d.State, tab), d, nil
}

// DistrictStats returns one district's tiers in the tab's presentation order.
func (s *Service) DistrictStats(district string, tab view.Tab) ([]rollup.Tier, *Derivation, error) {
	d, err := s.Current()
	if err != nil {
		return nil, nil, err
	}
	name, err := s.district(d, district)
	if err != nil {
		return nil, d, err
	}
	return rollup.Ordered(d.Districts[name], tab), d, nil
}

func (s *Service) district(d *Derivation, name string) (string, error) {
	canon := s.districts.Canonical(name)
	if _, ok := d.Districts[canon]; ok {
		return canon, nil
	}
	if _, ok := d.Districts[name]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownDistrict)
}

// StyledMap loads the boundaries of a map view and styles them with the
// current summaries. District views take the canonical district name.
func (s *Service) StyledMap(ctx context.Context, mode view.Mode, vis geo.Visibility) (geo.StyledCollection, *Derivation, error) {
	d, err := s.Current()
	if err != nil {
		return geo.StyledCollection{}, nil, err
	}
	if dv, ok := mode.(view.DistrictView); ok {
		name, err := s.district(d, dv.District)
		if err != nil {
			return geo.StyledCollection{}, d, err
		}
		dv.District = name
		mode = dv
	}

	fc, err := geo.Load(ctx, s.geo, mode)
	if err != nil {
		return geo.StyledCollection{}, d, err
	}
	styled := s.joiner.JoinAndStyle(fc, d.Summaries, vis)

	logger.GeoJoin(mode.Key(), styled.Matched, styled.Unmatched, styled.Dropped)
	metrics.GeoFeaturesTotal.WithLabelValues("matched").Add(float64(styled.Matched))
	metrics.GeoFeaturesTotal.WithLabelValues("unmatched").Add(float64(styled.Unmatched))
	metrics.GeoFeaturesTotal.WithLabelValues("dropped").Add(float64(styled.Dropped))
	metrics.GeoFeaturesTotal.WithLabelValues("hidden").Add(float64(styled.Hidden))
	return styled, d, nil
}

// WardMap returns the raw ward drawing of a local body.
func (s *Service) WardMap(ctx context.Context, lbCode string) ([]byte, error) {
	u, ok := s.reg.Unit(lbCode)
	if !ok {
		return nil, fmt.Errorf("%s: %w", lbCode, ErrLocalBodyNotFound)
	}
	mode := view.LocalBodyView{District: s.districts.Canonical(u.DistrictName), LBCode: u.Code}
	return s.geo.Fetch(ctx, mode)
}
