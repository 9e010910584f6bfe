package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

type Handlers struct {
	Q    *app.QueryService
	Sync *app.SyncService
	Resp *app.ResponseService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// reviewJSON decorates the domain entity with the derived attention cue.
type reviewJSON struct {
	ID             int64             `json:"id"`
	Platform       domain.Platform   `json:"platform"`
	ExternalID     string            `json:"external_id"`
	ReviewerName   string            `json:"reviewer_name"`
	Rating         int               `json:"rating"`
	Text           string            `json:"review_text"`
	ReviewDate     time.Time         `json:"review_date"`
	Sentiment      *domain.Sentiment `json:"sentiment"`
	ResponseText   *string           `json:"response_text"`
	NeedsAttention bool              `json:"needs_attention"`
}

func (h *Handlers) toJSON(r domain.Review) reviewJSON {
	return reviewJSON{
		ID:             r.ID,
		Platform:       r.Platform,
		ExternalID:     r.ExternalID,
		ReviewerName:   r.ReviewerName,
		Rating:         r.Rating,
		Text:           r.Text,
		ReviewDate:     r.ReviewDate,
		Sentiment:      r.Sentiment,
		ResponseText:   r.ResponseText,
		NeedsAttention: h.Q.NeedsAttention(r),
	}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api/reviews/", h.listReviews)
	s.mux.Get("/api/reviews/stats", h.getStats)
	s.mux.Post("/api/reviews/sync", h.triggerSync)
	s.mux.Post("/api/reviews/{id}/response", h.postResponse)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := domain.ReviewsQuery{}

	if ps := r.URL.Query().Get("platform"); ps != "" {
		p := domain.Platform(ps)
		if !p.Valid() {
			writeProblem(w, http.StatusBadRequest, "Invalid platform", "platform must be google, yelp or facebook")
			return
		}
		q.Platform = &p
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	q.Limit = limit

	rs, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not list reviews")
		return
	}

	out := make([]reviewJSON, 0, len(rs))
	for _, rv := range rs {
		out = append(out, h.toJSON(rv))
	}
	writeJSONWithETag(w, r, out)
}

func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.Stats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not compute stats")
		return
	}
	writeJSONWithETag(w, r, st)
}

func (h *Handlers) triggerSync(w http.ResponseWriter, r *http.Request) {
	report, err := h.Sync.Sync(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			writeProblem(w, http.StatusConflict, "Sync In Progress", "a sync is already running")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Sync Failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.Error().Err(err).Msg("failed to write sync report")
	}
}

func (h *Handlers) postResponse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	var body struct {
		ResponseText string `json:"response_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON with response_text")
		return
	}

	rv, err := h.Resp.PostResponse(r.Context(), id, body.ResponseText)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
		return
	case errors.Is(err, domain.ErrAlreadyResponded):
		writeProblem(w, http.StatusConflict, "Already Responded", "this review already has a response")
		return
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not store response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.toJSON(rv)); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}
