// Package http implements the REST API for Respira.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/respira-app/respira-server/internal/application/command"
	"github.com/respira-app/respira-server/internal/application/query"
	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/infrastructure/external/coach"
	"github.com/respira-app/respira-server/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Respira API",
		"version":     "v1",
		"description": "Behavior tracking and progress analytics for quitting smoking",
		"endpoints": map[string]string{
			"health":   "/health",
			"logs":     "/api/v1/logs",
			"calendar": "/api/v1/calendar/{year}",
			"insights": "/api/v1/insights",
			"context":  "/api/v1/context",
			"chat":     "/api/v1/chat",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// userIDFromRequest resolves the acting user. Clients send their identifier
// in the X-User-ID header; the user_id query parameter is accepted as a
// fallback for tools that cannot set headers.
func userIDFromRequest(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("user_id")
}

// requireUserID resolves the user or writes a 400 and returns false.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := userIDFromRequest(r)
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_user", "X-User-ID header or user_id parameter is required")
		return "", false
	}
	return userID, true
}

// decodeBody decodes a JSON request body or writes a 400 and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "empty_body", "Request body is required")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return false
	}
	return true
}

// writeHandlerError maps application errors to HTTP status codes.
func (s *Server) writeHandlerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "validation_error", "Invalid request", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	default:
		s.logger.Error("request failed",
			logger.Operation(op),
			logger.Err(err),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Request failed")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT LOG WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// smokeLogRequest is the POST /api/v1/logs body.
type smokeLogRequest struct {
	Date       string   `json:"date"`
	Cigarettes int      `json:"cigarettes"`
	Triggers   []string `json:"triggers"`
}

// handleRecordSmokeLog handles POST /api/v1/logs
func (s *Server) handleRecordSmokeLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req smokeLogRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordSmokeLogCommand{
		UserID:     userID,
		Date:       req.Date,
		Cigarettes: req.Cigarettes,
		Triggers:   req.Triggers,
	}

	result, err := s.deps.RecordSmokeLogHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeHandlerError(w, r, "RecordSmokeLog", err)
		return
	}

	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// urgeRequest is the POST /api/v1/urges body.
type urgeRequest struct {
	Timestamp string `json:"timestamp"`
	Trigger   string `json:"trigger"`
}

// handleRecordUrge handles POST /api/v1/urges
func (s *Server) handleRecordUrge(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req urgeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordUrgeCommand{
		UserID:    userID,
		Timestamp: req.Timestamp,
		Trigger:   req.Trigger,
	}

	if err := s.deps.RecordUrgeHandler.Handle(r.Context(), cmd); err != nil {
		s.writeHandlerError(w, r, "RecordUrge", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Urge event recorded"})
}

// gameSessionRequest is the POST /api/v1/games body.
type gameSessionRequest struct {
	Timestamp      string `json:"timestamp"`
	SecondsFocused int    `json:"seconds_focused"`
	PointsEarned   int    `json:"points_earned"`
}

// handleRecordGameSession handles POST /api/v1/games
func (s *Server) handleRecordGameSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req gameSessionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordGameSessionCommand{
		UserID:         userID,
		Timestamp:      req.Timestamp,
		SecondsFocused: req.SecondsFocused,
		PointsEarned:   req.PointsEarned,
	}

	if err := s.deps.RecordGameSessionHandler.Handle(r.Context(), cmd); err != nil {
		s.writeHandlerError(w, r, "RecordGameSession", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Game session recorded"})
}

// goalRequest is the POST /api/v1/goal body.
type goalRequest struct {
	GoalDays int `json:"goal_days"`
}

// handleSetGoal handles POST /api/v1/goal
func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.SetGoalCommand{
		UserID:   userID,
		GoalDays: req.GoalDays,
	}

	result, err := s.deps.SetGoalHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeHandlerError(w, r, "SetGoal", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// DERIVED READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLogStats handles GET /api/v1/logs/stats
func (s *Server) handleGetLogStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := query.GetLogStatsQuery{
		UserID: userID,
		Date:   getQueryParam(r, "date", ""),
	}

	result, err := s.deps.GetLogStatsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetLogStats", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetUrgeStats handles GET /api/v1/urges/stats
func (s *Server) handleGetUrgeStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := query.GetUrgeStatsQuery{
		UserID: userID,
		Year:   getQueryParamInt(r, "year", 0),
	}

	result, err := s.deps.GetUrgeStatsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetUrgeStats", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetGameStats handles GET /api/v1/games/stats
func (s *Server) handleGetGameStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := query.GetGameStatsQuery{
		UserID: userID,
		Year:   getQueryParamInt(r, "year", 0),
	}

	result, err := s.deps.GetGameStatsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetGameStats", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetCalendar handles GET /api/v1/calendar/{year}
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_year", "Year must be a number")
		return
	}

	q := query.GetCalendarQuery{
		UserID: userID,
		Year:   year,
	}

	result, err := s.deps.GetCalendarHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetCalendar", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetLifetimeStats handles GET /api/v1/stats/lifetime
func (s *Server) handleGetLifetimeStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := query.GetLifetimeStatsQuery{UserID: userID}

	result, err := s.deps.GetLifetimeStatsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetLifetimeStats", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetInsights handles GET /api/v1/insights
func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := query.GetInsightsQuery{UserID: userID}

	result, err := s.deps.GetInsightsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetInsights", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetContext handles GET /api/v1/context
func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := query.GetProgressContextQuery{
		UserID:         userID,
		ProfileSummary: getQueryParam(r, "profile_summary", ""),
		SkipCache:      getQueryParamBool(r, "fresh"),
	}

	result, err := s.deps.GetProgressContextHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeHandlerError(w, r, "GetProgressContext", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// COACH CHAT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// Canned replies for coach failures. The tone stays in character so a
// transport problem reads like the companion pausing, not a stack trace.
const (
	chatRateLimitedReply = "I'm receiving a lot of messages right now. Please give me a moment to catch my breath and try again in a minute!"
	chatErrorReply       = "I encountered a bit of a technical hiccup. Could you try sending that again?"
	chatEmptyReply       = "I'm here to support you. Could you tell me more about what's on your mind regarding your smoking journey?"
)

// chatRequest is the POST /api/v1/chat body. History is supplied by the
// client so the server stays stateless about conversations; only the most
// recent messages are used.
type chatRequest struct {
	Message        string                 `json:"message"`
	ProfileSummary string                 `json:"profile_summary,omitempty"`
	History        []coach.HistoryMessage `json:"history,omitempty"`
}

// chatResponse is the chat reply envelope.
type chatResponse struct {
	Response string `json:"response"`
	Filtered bool   `json:"filtered"`
}

// handleChat handles POST /api/v1/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	if s.deps.CoachClient == nil || s.deps.CoachGuard == nil || s.deps.CoachPrompts == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Chat is not configured")
		return
	}

	var req chatRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	// Scope guard first: filtered messages never reach the model.
	if kind := s.deps.CoachGuard.Check(req.Message); kind != coach.FallbackNone {
		writeJSON(w, http.StatusOK, chatResponse{
			Response: s.deps.CoachGuard.FallbackResponse(kind),
			Filtered: true,
		})
		return
	}

	// Ground the reply in the user's current progress.
	dc, err := s.deps.GetProgressContextHandler.Handle(r.Context(), query.GetProgressContextQuery{
		UserID:         userID,
		ProfileSummary: req.ProfileSummary,
	})
	if err != nil {
		s.writeHandlerError(w, r, "Chat", err)
		return
	}

	prompt := s.deps.CoachPrompts.Build(req.Message, dc, req.History)

	reply, err := s.deps.CoachClient.Generate(r.Context(), coach.SystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("coach generation failed",
			logger.Err(err),
			logger.String("request_id", getRequestID(r.Context())),
		)
		text := chatErrorReply
		if errors.Is(err, shared.ErrRateLimited) || errors.Is(err, shared.ErrCoachUnavailable) {
			text = chatRateLimitedReply
		}
		writeJSON(w, http.StatusOK, chatResponse{Response: text, Filtered: false})
		return
	}

	if reply == "" {
		writeJSON(w, http.StatusOK, chatResponse{Response: chatEmptyReply, Filtered: false})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, Filtered: false})
}
