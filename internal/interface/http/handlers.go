package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/campus-hub/clubevent-hub/config"
	"github.com/campus-hub/clubevent-hub/internal/agents"
	"github.com/campus-hub/clubevent-hub/internal/application/command"
	"github.com/campus-hub/clubevent-hub/internal/application/query"
	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// maxRequestBody limits request body size for JSON endpoints.
const maxRequestBody = 1 << 20 // 1 MB

// ══════════════════════════════════════════════════════════════════════════════
// JSON HELPERS
// ══════════════════════════════════════════════════════════════════════════════

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrEventFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrEventInPast):
		writeError(w, http.StatusGone, err.Error())
	case shared.IsAlreadyExists(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, agents.ErrMissingTaskField):
		writeError(w, http.StatusBadRequest, err.Error())
	case shared.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case shared.IsExternalService(err):
		s.log.Error("upstream failure",
			logger.String("path", r.URL.Path), logger.Err(err))
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		s.log.Error("unhandled error",
			logger.String("path", r.URL.Path), logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// featureEnabled reports whether a feature is on for the student
// (empty studentID evaluates global state only).
func (s *Server) featureEnabled(name, studentID string) bool {
	if s.deps.Features == nil {
		return true
	}
	return s.deps.Features.IsEnabled(name, studentID)
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthCheck != nil {
		if err := s.deps.HealthCheck(r.Context()); err != nil {
			s.log.Warn("health check failed", logger.Err(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.deps.SearchEvents.Handle(r.Context(), query.SearchEventsQuery{
		Query:     q.Get("q"),
		EventType: catalog.EventType(q.Get("type")),
		ClubID:    q.Get("club_id"),
		Limit:     queryLimit(r),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrendingEvents(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.TrendingEvents.Handle(r.Context(), query.GetTrendingEventsQuery{
		Limit: queryLimit(r),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

type signupRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	FieldOfStudy string   `json:"field_of_study"`
	YearLevel    int      `json:"year_level"`
	SkillIDs     []string `json:"skill_ids"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.Signup.Handle(r.Context(), command.SignupStudentCommand{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		FieldOfStudy: req.FieldOfStudy,
		YearLevel:    req.YearLevel,
		SkillIDs:     req.SkillIDs,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type updateProfileRequest struct {
	Bio                     *string                          `json:"bio"`
	Goals                   *string                          `json:"goals"`
	FieldOfStudy            *string                          `json:"field_of_study"`
	YearLevel               *int                             `json:"year_level"`
	SkillIDs                []string                         `json:"skill_ids"`
	NotificationPreferences *catalog.NotificationPreferences `json:"notification_preferences"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.deps.UpdateProfile.Handle(r.Context(), command.UpdateProfileCommand{
		StudentID:               r.PathValue("id"),
		Bio:                     req.Bio,
		Goals:                   req.Goals,
		FieldOfStudy:            req.FieldOfStudy,
		YearLevel:               req.YearLevel,
		SkillIDs:                req.SkillIDs,
		NotificationPreferences: req.NotificationPreferences,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Recommendations.Handle(r.Context(), query.GetRecommendationsQuery{
		StudentID: r.PathValue("id"),
		Limit:     queryLimit(r),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimilarStudents(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if !s.featureEnabled(config.FeatureSimilarMatcher, studentID) {
		writeError(w, http.StatusForbidden, "similar students is not available")
		return
	}

	result, err := s.deps.SimilarStudents.Handle(r.Context(), query.FindSimilarStudentsQuery{
		StudentID: studentID,
		Limit:     queryLimit(r),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type registerEventRequest struct {
	EventID string `json:"event_id"`
}

func (s *Server) handleRegisterEvent(w http.ResponseWriter, r *http.Request) {
	var req registerEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterEvent.Handle(r.Context(), command.RegisterForEventCommand{
		StudentID: r.PathValue("id"),
		EventID:   req.EventID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// AGENT ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// agentResponse is the common shape for answers produced by agents.
type agentResponse struct {
	Response string `json:"response"`
	Count    int    `json:"count,omitempty"`
	Kind     string `json:"kind"`
}

type chatRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.Assistant.Route(r.Context(), req.Question, req.Context)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agentResponse{
		Response: result.Response,
		Count:    result.Count,
		Kind:     string(result.Kind),
	})
}

func (s *Server) handleClubChat(w http.ResponseWriter, r *http.Request) {
	if !s.featureEnabled(config.FeatureAgentClubChat, "") {
		writeError(w, http.StatusForbidden, "club chat is not available")
		return
	}

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.Assistant.AskClub(r.Context(), r.PathValue("id"), req.Question)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agentResponse{
		Response: result.Response,
		Count:    result.Count,
		Kind:     string(result.Kind),
	})
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Assistant.Onboard(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agentResponse{
		Response: result.Response,
		Count:    result.Count,
		Kind:     string(result.Kind),
	})
}

// explainedRecommendationsResponse pairs the deterministic ranking with the
// agent's narrative about it.
type explainedRecommendationsResponse struct {
	Explanation string                        `json:"explanation"`
	Items       []query.RecommendationItemDTO `json:"items"`
	Student     string                        `json:"student_id"`
}

func (s *Server) handleExplainedRecommendations(w http.ResponseWriter, r *http.Request) {
	result, recs, err := s.deps.Assistant.ExplainRecommendations(
		r.Context(), r.PathValue("id"), queryLimit(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, explainedRecommendationsResponse{
		Explanation: result.Response,
		Items:       recs.Items,
		Student:     recs.StudentID,
	})
}

type agentSearchRequest struct {
	Query string `json:"query"`
}

type agentSearchResponse struct {
	Response string           `json:"response"`
	Count    int              `json:"count"`
	Events   []query.EventDTO `json:"events"`
}

func (s *Server) handleAgentSearch(w http.ResponseWriter, r *http.Request) {
	var req agentSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, found, err := s.deps.Assistant.SearchEvents(r.Context(), req.Query)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agentSearchResponse{
		Response: result.Response,
		Count:    result.Count,
		Events:   found.Events,
	})
}
