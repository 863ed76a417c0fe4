package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/services"
)

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

type upgradeResponse struct {
	Status string         `json:"status"`
	Plan   models.Plan    `json:"plan"`
	Tenant *models.Tenant `json:"tenant"`
}

// Upgrade moves the caller's tenant to the pro plan. Admins only.
func (h *TenantHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Upgrade(r.Context(), p, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, upgradeResponse{
		Status: "upgraded",
		Plan:   tenant.Plan,
		Tenant: tenant,
	})
}

// Get returns the caller's tenant with its note usage
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	usage, err := h.tenantService.Usage(r.Context(), p, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usage)
}
