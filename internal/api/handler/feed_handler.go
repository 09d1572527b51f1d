package handler

import (
	"net/http"
	"strconv"
	"thundercipher/internal/app/service"
	"thundercipher/internal/common"
	"thundercipher/internal/platform/config"
)

type FeedHandler struct {
	progressService *service.ProgressService
	streams         StreamSource
}

func NewFeedHandler(progressService *service.ProgressService, streams StreamSource) *FeedHandler {
	return &FeedHandler{progressService: progressService, streams: streams}
}

// Recent is the snapshot a client renders before its stream connects.
func (h *FeedHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.progressService.RecentFeed(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, events)
}

// Stream relays the global solve feed over SSE.
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	streamSSE(w, r, h.streams, config.AppConfig.FeedChannel)
}
