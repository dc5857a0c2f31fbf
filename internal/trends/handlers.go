package trends

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves a Service over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// setDataHeaders reports which snapshot answered and whether it is fresh.
func setDataHeaders(w http.ResponseWriter, d *Derivation) {
	if d == nil {
		return
	}
	w.Header().Set("X-Snapshot-ID", d.SnapshotID)
	if d.Stale {
		w.Header().Set("X-Data-Status", "stale")
	} else {
		w.Header().Set("X-Data-Status", "fresh")
	}
}

// writeError maps service errors to statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoSnapshot):
		http.Error(w, "Trend data not available yet", http.StatusServiceUnavailable)
	case errors.Is(err, ErrLocalBodyNotFound):
		http.Error(w, "Local body not found", http.StatusNotFound)
	case errors.Is(err, ErrUnknownDistrict):
		http.Error(w, "Unknown district", http.StatusNotFound)
	case errors.Is(err, view.ErrUnknownTab):
		http.Error(w, "Invalid tab parameter", http.StatusBadRequest)
	case errors.Is(err, geo.ErrSourceNotFound):
		http.Error(w, "Map not found", http.StatusNotFound)
	default:
		logger.L().Error("request failed",
			zap.String("component", "trends"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// tab reads an optional tier tab, defaulting to the district tier.
func tab(s string) (view.Tab, error) {
	if s == "" {
		return view.TabDistrict, nil
	}
	return view.ParseTab(s)
}

// visibility reads showMuni and showCorp. Both default to shown.
func visibility(r *http.Request) (geo.Visibility, error) {
	vis := geo.ShowAll()
	if v := r.URL.Query().Get("showMuni"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return vis, err
		}
		vis.ShowMunicipalities = b
	}
	if v := r.URL.Query().Get("showCorp"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return vis, err
		}
		vis.ShowCorporations = b
	}
	return vis, nil
}

// GetSummaries returns every local-body summary, optionally for one district.
func (h *Handler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, d, err := h.svc.Summaries(r.URL.Query().Get("district"))
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, summaries)
}

func (h *Handler) GetLocalBody(w http.ResponseWriter, r *http.Request) {
	detail, d, err := h.svc.LocalBody(chi.URLParam(r, "lbCode"))
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, detail)
}

func (h *Handler) GetLocalBodyWards(w http.ResponseWriter, r *http.Request) {
	detail, d, err := h.svc.LocalBody(chi.URLParam(r, "lbCode"))
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, detail.Wards)
}

// GetLocalBodyWardMap serves the ward drawing of a local body.
func (h *Handler) GetLocalBodyWardMap(w http.ResponseWriter, r *http.Request) {
	svg, err := h.svc.WardMap(r.Context(), chi.URLParam(r, "lbCode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (h *Handler) GetStateStats(w http.ResponseWriter, r *http.Request) {
	t, err := tab(r.URL.Query().Get("tab"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tiers, d, err := h.svc.StateStats(t)
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, tiers)
}

func (h *Handler) GetDistrictStats(w http.ResponseWriter, r *http.Request) {
	t, err := tab(r.URL.Query().Get("tab"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tiers, d, err := h.svc.DistrictStats(chi.URLParam(r, "district"), t)
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, tiers)
}

// GetDistricts returns the district overview table from the registry.
func (h *Handler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	var filter registry.UnitType
	if v := r.URL.Query().Get("type"); v != "" {
		t, ok := registry.ParseUnitType(v)
		if !ok {
			http.Error(w, "Invalid type parameter", http.StatusBadRequest)
			return
		}
		filter = t
	}
	writeJSON(w, h.svc.Registry().DistrictTable(filter))
}

func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Registry().KPIs())
}

// GetDerivation reports the current snapshot and its validation findings.
func (h *Handler) GetDerivation(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Current()
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, d)
}

func (h *Handler) GetStateMap(w http.ResponseWriter, r *http.Request) {
	t, err := view.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.serveMap(w, r, view.StateView{Tab: t})
}

func (h *Handler) GetDistrictMap(w http.ResponseWriter, r *http.Request) {
	t, err := view.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.serveMap(w, r, view.DistrictView{District: chi.URLParam(r, "district"), Tab: t})
}

func (h *Handler) serveMap(w http.ResponseWriter, r *http.Request, mode view.Mode) {
	vis, err := visibility(r)
	if err != nil {
		http.Error(w, "Invalid visibility parameter", http.StatusBadRequest)
		return
	}
	styled, d, err := h.svc.StyledMap(r.Context(), mode, vis)
	setDataHeaders(w, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Geo-Matched", strconv.Itoa(styled.Matched))
	w.Header().Set("X-Geo-Unmatched", strconv.Itoa(styled.Unmatched))
	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(styled.Features)
}

// PostRefresh runs a derivation pass now.
func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Refresh(r.Context())
	setDataHeaders(w, d)
	if err != nil {
		logger.L().Warn("manual refresh failed", zap.String("component", "trends"), zap.Error(err))
		http.Error(w, "Refresh failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, d)
}
