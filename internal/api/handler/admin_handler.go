package handler

import (
	"net/http"
	"strconv"
	"thundercipher/internal/api/middleware"
	"thundercipher/internal/app/service"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/stats", h.stats)
	r.Get("/flag-logs", h.flagLogs)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) flagLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.SubmissionLogFilter{
		UserID: q.Get("user_id"),
		LabID:  q.Get("lab_id"),
	}
	if raw := q.Get("correct"); raw != "" {
		correct, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid correct filter: "+err.Error())
			return
		}
		filter.Correct = &correct
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	logs, err := h.adminService.FlagLogs(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, logs)
}
