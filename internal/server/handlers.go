package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ideaforge/internal/core"
	"ideaforge/internal/email"
	"ideaforge/internal/llm"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/session"
	"ideaforge/internal/trends"
	"ideaforge/internal/youtube"
)

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"gemini":  configuredString(s.deps.LLM != nil),
		"youtube": configuredString(s.deps.YouTube != nil && s.deps.YouTube.APIKey != ""),
		"email":   configuredString(s.deps.Mailer != nil && s.deps.Mailer.Configured()),
	}
	s.respondOK(w, map[string]any{
		"status": "ok",
		"checks": checks,
	})
}

func configuredString(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

// handleTrends handles GET /api/trends. Collecting trends resets the matching
// session: the cursor returns to zero and accumulated matches are dropped.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	items := trends.Collect(r.Context(), s.deps.Trends...)
	s.deps.Session.SetTrends(items)

	s.respondOK(w, map[string]any{
		"trends":    items,
		"count":     len(items),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type matchRequest struct {
	Trends []core.TrendItem `json:"trends"`
}

// handleMatch handles POST /api/match. With an empty body it takes the next
// page of trends off the session cursor; with an explicit trends list it
// matches exactly those. Either way results are enriched and folded into the
// session.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pipeline == nil {
		s.respondError(w, http.StatusServiceUnavailable, llm.ErrNotConfigured.Error())
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var page []core.TrendItem
	hasMore := false
	if req.Trends != nil {
		if len(req.Trends) == 0 {
			s.respondError(w, http.StatusBadRequest, "trends must not be empty")
			return
		}
		page = req.Trends
	} else {
		var err error
		page, hasMore, err = s.deps.Session.NextTrendPage()
		if err != nil {
			if errors.Is(err, session.ErrTrendsExhausted) {
				s.respondError(w, http.StatusNotFound, "all trends have been matched; refresh trends to start over")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	matches, err := s.deps.Pipeline.Match(r.Context(), page, s.deps.Titans)
	if err != nil {
		s.respondMatchError(w, err)
		return
	}
	s.deps.Session.AddMatches(matches)

	active, err := s.deps.Session.ActiveMatches()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondOK(w, map[string]any{
		"matches": active,
		"count":   len(active),
		"hasMore": hasMore,
	})
}

func (s *Server) respondMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrMatchTimeout):
		s.respondError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, pipeline.ErrNoMatches):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, llm.ErrBadModelOutput):
		s.log.Error("model returned unparseable matching output", "error", err)
		s.respondError(w, http.StatusBadGateway, "the model returned an unreadable response; try again")
	case errors.Is(err, llm.ErrNotConfigured):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleListMatches handles GET /api/matches.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	active, err := s.deps.Session.ActiveMatches()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	used, err := s.deps.Session.UsedMatches()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondOK(w, map[string]any{
		"active": active,
		"used":   used,
	})
}

type restoreMatchRequest struct {
	Key string `json:"key"`
}

// handleRestoreMatch handles POST /api/matches/restore: it releases a
// consumed methodology back into the active pool.
func (s *Server) handleRestoreMatch(w http.ResponseWriter, r *http.Request) {
	var req restoreMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		s.respondError(w, http.StatusBadRequest, "request body must include a non-empty key")
		return
	}

	if err := s.deps.Session.RestoreMatch(req.Key); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondOK(w, nil)
}

type generateRequest struct {
	Key          string            `json:"key"`
	Match        *core.MatchResult `json:"match"`
	CustomPrompt string            `json:"customPrompt"`
	SendEmail    bool              `json:"sendEmail"`
}

// handleGenerate handles POST /api/generate: it turns a confirmed match into
// a video idea, records it, and optionally emails the report. A failed email
// never rolls back the idea; the response just reports emailSent false.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.LLM == nil {
		s.respondError(w, http.StatusServiceUnavailable, llm.ErrNotConfigured.Error())
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Key == "" && req.Match == nil) {
		s.respondError(w, http.StatusBadRequest, "request body must include a key or a match")
		return
	}

	var match core.MatchResult
	if req.Match != nil {
		match = *req.Match
	} else {
		found, ok := s.deps.Session.FindMatch(req.Key)
		if !ok {
			s.respondError(w, http.StatusNotFound, "no match found for key "+req.Key)
			return
		}
		match = found
	}

	generate := func(ctx context.Context) (core.VideoIdea, error) {
		return s.deps.LLM.GenerateIdea(ctx, match, req.CustomPrompt)
	}
	var idea core.VideoIdea
	var err error
	if s.deps.GenerateTimeout > 0 {
		idea, err = pipeline.WithDeadline(r.Context(), s.deps.GenerateTimeout, generate)
	} else {
		idea, err = generate(r.Context())
	}
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrTimeout):
			s.respondError(w, http.StatusGatewayTimeout, "idea generation timed out; try again")
		case errors.Is(err, llm.ErrBadModelOutput):
			s.log.Error("model returned unparseable idea output", "error", err)
			s.respondError(w, http.StatusBadGateway, "the model returned an unreadable response; try again")
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := s.deps.Session.RecordIdea(idea); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	emailSent := false
	if req.SendEmail && s.deps.Mailer != nil {
		if err := s.deps.Mailer.SendIdeaReport(idea); err != nil {
			s.log.Warn("idea report email failed", "error", err.Error())
		} else {
			emailSent = true
		}
	}

	s.respondOK(w, map[string]any{
		"ideas":     []core.VideoIdea{idea},
		"count":     1,
		"emailSent": emailSent,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type papersRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Key   string `json:"key"`
}

// handlePapers handles POST /api/papers: either a raw query passthrough or an
// on-demand multi-variant search for a match already in the session.
func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	if s.deps.Papers == nil {
		s.respondError(w, http.StatusServiceUnavailable, "paper search is not available")
		return
	}

	var req papersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Query == "" && req.Key == "") {
		s.respondError(w, http.StatusBadRequest, "request body must include a query or a match key")
		return
	}

	var papers []core.AcademicPaper
	var err error
	if req.Query != "" {
		limit := req.Limit
		if limit <= 0 {
			limit = 5
		}
		papers, err = s.deps.Papers.Search(r.Context(), req.Query, limit)
	} else {
		match, ok := s.deps.Session.FindMatch(req.Key)
		if !ok {
			s.respondError(w, http.StatusNotFound, "no match found for key "+req.Key)
			return
		}
		papers, err = s.deps.Papers.SearchForMatch(r.Context(), match)
	}
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondOK(w, map[string]any{
		"papers": papers,
		"count":  len(papers),
	})
}

// handleListIdeas handles GET /api/ideas.
func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.deps.Session.Ideas()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondOK(w, map[string]any{
		"ideas": ideas,
		"count": len(ideas),
	})
}

// handleDeleteIdea handles DELETE /api/ideas/{id}.
func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Session.DeleteIdea(id); err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondOK(w, nil)
}

// handleRestoreIdea handles POST /api/ideas/{id}/restore.
func (s *Server) handleRestoreIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Session.RestoreIdea(id); err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondOK(w, nil)
}

// youtubePageSize is how many videos a single dashboard request shows.
const youtubePageSize = 5

// handleYouTube handles GET /api/youtube?famous=true&usedIds=a,b,c&offset=0.
func (s *Server) handleYouTube(w http.ResponseWriter, r *http.Request) {
	if s.deps.YouTube == nil {
		s.respondError(w, http.StatusServiceUnavailable, youtube.ErrNotConfigured.Error())
		return
	}

	usedIDs := make(map[string]bool)
	if raw := r.URL.Query().Get("usedIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				usedIDs[id] = true
			}
		}
	}
	famous := r.URL.Query().Get("famous") == "true"

	videos, err := s.deps.YouTube.SearchHabitVideos(r.Context(), usedIDs, famous)
	if err != nil {
		if errors.Is(err, youtube.ErrNotConfigured) {
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	// The keyword pools narrow the search; the model pass then drops videos
	// about people who are not actually famous.
	if famous && s.deps.LLM != nil {
		videos = s.deps.LLM.FilterFamous(r.Context(), videos)
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 || offset > len(videos) {
		offset = 0
	}
	end := offset + youtubePageSize
	if end > len(videos) {
		end = len(videos)
	}

	s.respondOK(w, map[string]any{
		"videos":  videos[offset:end],
		"count":   end - offset,
		"hasMore": end < len(videos),
		"total":   len(videos),
	})
}

// handleAnalyze handles POST /api/analyze: a structured habit breakdown plus
// a companion app concept for one video.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.deps.LLM == nil {
		s.respondError(w, http.StatusServiceUnavailable, llm.ErrNotConfigured.Error())
		return
	}

	var video core.Video
	if err := json.NewDecoder(r.Body).Decode(&video); err != nil || video.Title == "" {
		s.respondError(w, http.StatusBadRequest, "request body must be a video with a title")
		return
	}

	analysis, vibe, err := s.deps.LLM.AnalyzeHabit(r.Context(), video)
	if err != nil {
		if errors.Is(err, llm.ErrBadModelOutput) {
			s.log.Error("model returned unparseable analysis output", "error", err)
			s.respondError(w, http.StatusBadGateway, "the model returned an unreadable response; try again")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondOK(w, map[string]any{
		"analysis":   analysis,
		"vibeCoding": vibe,
	})
}

// handleSuggest handles GET /api/suggest. This surface never fails: without a
// model it serves the static pool.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var suggestions []core.HabitSuggestion
	if s.deps.LLM != nil {
		suggestions = s.deps.LLM.SuggestHabits(r.Context())
	} else {
		suggestions = llm.FallbackHabits()
	}

	s.respondOK(w, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

type emailRequest struct {
	IdeaID     string               `json:"ideaId"`
	Analysis   *core.HabitAnalysis  `json:"analysis"`
	VibeCoding *core.VibeCodingIdea `json:"vibeCoding"`
}

// handleEmail handles POST /api/email: explicit delivery of an idea report or
// a habit guide. Unlike the generate route, a delivery failure here is the
// whole point of the call and is surfaced as an error.
func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	if s.deps.Mailer == nil {
		s.respondError(w, http.StatusInternalServerError, email.ErrNotConfigured.Error())
		return
	}

	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.IdeaID != "":
		ideas, err := s.deps.Session.Ideas()
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, idea := range ideas {
			if idea.ID == req.IdeaID {
				if err := s.deps.Mailer.SendIdeaReport(idea); err != nil {
					s.respondError(w, http.StatusInternalServerError, err.Error())
					return
				}
				s.respondOK(w, nil)
				return
			}
		}
		s.respondError(w, http.StatusNotFound, "no idea found with id "+req.IdeaID)

	case req.Analysis != nil && req.VibeCoding != nil:
		if err := s.deps.Mailer.SendHabitGuide(*req.Analysis, *req.VibeCoding); err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondOK(w, nil)

	default:
		s.respondError(w, http.StatusBadRequest, "request must include ideaId or analysis plus vibeCoding")
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondOK writes the flat success envelope: {"success": true} with the
// route's payload fields alongside it.
func (s *Server) respondOK(w http.ResponseWriter, fields map[string]any) {
	payload := map[string]any{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	s.respondJSON(w, http.StatusOK, payload)
}

// respondError writes an error envelope
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{"success": false, "error": message})
}
