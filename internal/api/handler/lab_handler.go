package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"thundercipher/internal/api/middleware"
	"thundercipher/internal/app/service"
	"thundercipher/internal/common"

	"github.com/go-chi/chi/v5"
)

type LabHandler struct {
	labService     *service.LabService
	scoringService *service.ScoringService
}

func NewLabHandler(labService *service.LabService, scoringService *service.ScoringService) *LabHandler {
	return &LabHandler{labService: labService, scoringService: scoringService}
}

func (h *LabHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(public chi.Router) {
		public.Use(middleware.OptionalAuthenticator)
		public.Get("/", h.list)            // GET /api/v1/labs
		public.Get("/{slug}", h.get)       // GET /api/v1/labs/sql-injection-basics
	})

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/{slug}/submit", h.submitFlag)
	})

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.create)
		adminRouter.Put("/{id}", h.update)
		adminRouter.Delete("/{id}", h.delete)
	})
}

func (h *LabHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListLabsRequest{
		SearchTerm: q.Get("search"),
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
	}
	// Completion markers only appear for authenticated callers.
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		req.UserID = userID
	}
	if role, ok := middleware.GetUserRoleFromContext(r.Context()); ok {
		req.Role = role
	}

	resp, err := h.labService.List(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *LabHandler) get(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	lab, err := h.labService.GetBySlug(r.Context(), chi.URLParam(r, "slug"), role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, lab)
}

func (h *LabHandler) submitFlag(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.SubmitFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	result, err := h.scoringService.SubmitFlag(r.Context(), userID, chi.URLParam(r, "slug"), req.Flag, ip)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *LabHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	lab, err := h.labService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, lab)
}

func (h *LabHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	lab, err := h.labService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, lab)
}

func (h *LabHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.labService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Lab deleted"})
}
