package handlers

import (
	"net/http"

	"qrserve/internal/domain"
)

// ListPlans returns the purchasable plan catalog.
func (a *App) ListPlans(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"plans": domain.PlanCatalog()})
}
