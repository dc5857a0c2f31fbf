package trends

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(svc *Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/summaries", h.GetSummaries)
	r.Get("/localbodies/{lbCode}", h.GetLocalBody)
	r.Get("/localbodies/{lbCode}/wards", h.GetLocalBodyWards)
	r.Get("/localbodies/{lbCode}/map", h.GetLocalBodyWardMap)
	r.Get("/stats", h.GetStateStats)
	r.Get("/districts", h.GetDistricts)
	r.Get("/districts/{district}/stats", h.GetDistrictStats)
	r.Get("/kpis", h.GetKPIs)
	r.Get("/derivation", h.GetDerivation)
	r.Get("/map/state/{tab}", h.GetStateMap)
	r.Get("/map/districts/{district}/{tab}", h.GetDistrictMap)

	r.Post("/refresh", h.PostRefresh)

	return r
}
