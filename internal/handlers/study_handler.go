package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pairlingua/backend/internal/middleware"
	"github.com/pairlingua/backend/internal/models"
	"go.uber.org/zap"
)

// DefaultDueCardsLimit is used when the limit query parameter is omitted
const DefaultDueCardsLimit = 20

// StudyService is the interface that wraps methods for spaced-repetition study logic
type StudyService interface {
	// GetDueCards selects the next working set of cards for the user and registers it as the live session
	//
	// "userID" parameter is used to identify the user.
	// "req" carries the limit (1-50), the include-new flag and the optional exercise type and tier filters.
	//
	// A validation error is returned for an out-of-range limit or unknown filter values.
	GetDueCards(ctx context.Context, userID int, req models.DueCardsRequest) (*models.DueCardsResponse, error)
	// SubmitReviewBatch applies 1-50 review responses atomically
	//
	// Nothing is written when any item fails validation or references an unknown word pair.
	SubmitReviewBatch(ctx context.Context, userID int, batch models.ReviewBatch) (*models.ReviewBatchResponse, error)
	// ReplaceSessionCard swaps one completed card of a live session for a new one
	ReplaceSessionCard(ctx context.Context, userID int, req models.ReplaceCardRequest) (*models.ReplaceCardResponse, error)
	// GetSessionStats aggregates the review log of one session
	GetSessionStats(ctx context.Context, userID int, sessionID string) (*models.SessionStats, error)
	// GetProgressOverview summarizes the user's cards and streak
	GetProgressOverview(ctx context.Context, userID int) (*models.ProgressOverview, error)
	// SetCardSuspended flips the suspended flag of an existing card
	SetCardSuspended(ctx context.Context, userID, wordPairID int, suspended bool) error
}

// StudyHandler handles study-related HTTP requests
type StudyHandler struct {
	BaseHandler
	service StudyService
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(service StudyService, logger *zap.Logger) *StudyHandler {
	return &StudyHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers all study handler routes
func (h *StudyHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/study", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/cards/due", h.GetDueCards)
		r.Post("/cards/review", h.SubmitReviewBatch)
		r.Put("/cards/{wordPairId}/suspension", h.SetCardSuspension)
		r.Post("/session/replace", h.ReplaceSessionCard)
		r.Get("/session/{id}/stats", h.GetSessionStats)
		r.Get("/progress/overview", h.GetProgressOverview)
	})
}

// GetDueCards handles GET /api/v1/study/cards/due
// @Summary Get due cards
// @Description Select overdue and new cards for the authenticated user and register them as the live study session. Requires authentication.
// @Tags study
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of cards (1-50), default: 20"
// @Param includeNew query bool false "Include never-seen word pairs, default: true"
// @Param exerciseTypes query string false "Comma-separated allow-list: matching, multiple_choice, typing"
// @Param tiers query string false "Comma-separated difficulty tiers, e.g. A1,B2"
// @Param tags query string false "Comma-separated tags, a word pair matches when it shares any of them"
// @Success 200 {object} models.DueCardsResponse
// @Failure 400 {object} map[string]string "Bad request - invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/study/cards/due [get]
func (h *StudyHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := models.DueCardsRequest{Limit: DefaultDueCardsLimit, IncludeNew: true}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			h.Logger.Error("failed to parse limit parameter", zap.Error(err))
			h.RespondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		req.Limit = limit
	}

	if includeNewStr := query.Get("includeNew"); includeNewStr != "" {
		includeNew, err := strconv.ParseBool(includeNewStr)
		if err != nil {
			h.Logger.Error("failed to parse includeNew parameter", zap.Error(err))
			h.RespondError(w, http.StatusBadRequest, "invalid includeNew parameter")
			return
		}
		req.IncludeNew = includeNew
	}

	for _, t := range splitList(query.Get("exerciseTypes")) {
		req.ExerciseTypes = append(req.ExerciseTypes, models.ExerciseType(t))
	}
	req.Tiers = splitList(query.Get("tiers"))
	req.Tags = splitList(query.Get("tags"))

	response, err := h.service.GetDueCards(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get due cards")
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// SubmitReviewBatch handles POST /api/v1/study/cards/review
// @Summary Submit review batch
// @Description Apply 1-50 review responses atomically, reschedule the cards and update streak and achievements. Requires authentication.
// @Tags study
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ReviewBatch true "Review batch"
// @Success 200 {object} models.ReviewBatchResponse
// @Failure 400 {object} map[string]string "Bad request - invalid batch"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Unknown word pair"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/study/cards/review [post]
func (h *StudyHandler) SubmitReviewBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var batch models.ReviewBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.Logger.Error("failed to decode review batch", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.service.SubmitReviewBatch(r.Context(), userID, batch)
	if err != nil {
		h.RespondServiceError(w, err, "failed to submit review batch")
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// ReplaceSessionCard handles POST /api/v1/study/session/replace
// @Summary Replace session card
// @Description Remove a completed card from the live session and append one more due card. Requires authentication.
// @Tags study
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ReplaceCardRequest true "Replacement request"
// @Success 200 {object} models.ReplaceCardResponse
// @Failure 400 {object} map[string]string "Bad request - invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Session not found or no card available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/study/session/replace [post]
func (h *StudyHandler) ReplaceSessionCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req models.ReplaceCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode replace card request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.service.ReplaceSessionCard(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to replace session card")
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// GetSessionStats handles GET /api/v1/study/session/{id}/stats
// @Summary Get session statistics
// @Description Aggregate the review log of one study session. Requires authentication.
// @Tags study
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionStats
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/study/session/{id}/stats [get]
func (h *StudyHandler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetSessionStats(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get session stats")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// GetProgressOverview handles GET /api/v1/study/progress/overview
// @Summary Get progress overview
// @Description Card counts by stage, overall accuracy and streak for the authenticated user. Requires authentication.
// @Tags study
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ProgressOverview
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/study/progress/overview [get]
func (h *StudyHandler) GetProgressOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	overview, err := h.service.GetProgressOverview(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get progress overview")
		return
	}

	h.RespondJSON(w, http.StatusOK, overview)
}

// SetCardSuspensionRequest represents a card suspension toggle
type SetCardSuspensionRequest struct {
	Suspended *bool `json:"suspended"`
}

// SetCardSuspension handles PUT /api/v1/study/cards/{wordPairId}/suspension
// @Summary Suspend or resume a card
// @Description Suspended cards are excluded from due-card selection and the total-due count. Requires authentication.
// @Tags study
// @Accept json
// @Security ApiKeyAuth
// @Param wordPairId path int true "Word pair ID"
// @Param request body SetCardSuspensionRequest true "Suspension flag"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Bad request - invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/study/cards/{wordPairId}/suspension [put]
func (h *StudyHandler) SetCardSuspension(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	wordPairID, err := strconv.Atoi(chi.URLParam(r, "wordPairId"))
	if err != nil {
		h.Logger.Error("failed to parse wordPairId parameter", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid wordPairId parameter")
		return
	}

	var req SetCardSuspensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode suspension request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Suspended == nil {
		h.RespondError(w, http.StatusBadRequest, "suspended is required")
		return
	}

	if err := h.service.SetCardSuspended(r.Context(), userID, wordPairID, *req.Suspended); err != nil {
		h.RespondServiceError(w, err, "failed to set card suspension")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StudyHandler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
	}
	return userID, ok
}

// splitList parses a comma-separated query value, dropping blanks
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
