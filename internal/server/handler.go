// Package server exposes dictionary lookup, segmentation, furigana and the
// story store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/kotoba-reader/kotoba/internal/assets"
	"github.com/kotoba-reader/kotoba/internal/dictionary"
	"github.com/kotoba-reader/kotoba/internal/japanese"
	"github.com/kotoba-reader/kotoba/internal/lazy"
	"github.com/kotoba-reader/kotoba/internal/lookup"
	"github.com/kotoba-reader/kotoba/internal/reader"
	"github.com/kotoba-reader/kotoba/internal/segment"
	"github.com/kotoba-reader/kotoba/internal/story"
)

// Tokenizer segments text into morphemes.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) (japanese.Result, error)
	Active() japanese.Strategy
}

// DictionaryStatus reports the state of the lexical index.
type DictionaryStatus interface {
	Stats(ctx context.Context) (dictionary.Stats, error)
	State() lazy.State
}

// Handler serves the HTTP API.
type Handler struct {
	looker     lookup.Looker
	annotator  reader.Annotator
	tokenizer  Tokenizer
	dictionary DictionaryStatus
	stories    story.Repository
	page       *template.Template
}

// Option configures a Handler.
type Option func(*Handler)

// WithReaderTemplate replaces the embedded reading page template.
func WithReaderTemplate(tmpl *template.Template) Option {
	return func(h *Handler) {
		h.page = tmpl
	}
}

// NewHandler creates a Handler. stories may be nil, in which case the story
// endpoints answer 503.
func NewHandler(
	looker lookup.Looker,
	annotator reader.Annotator,
	tokenizer Tokenizer,
	dictionary DictionaryStatus,
	stories story.Repository,
	opts ...Option,
) *Handler {
	h := &Handler{
		looker:     looker,
		annotator:  annotator,
		tokenizer:  tokenizer,
		dictionary: dictionary,
		stories:    stories,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.page == nil {
		page, err := assets.ParseReaderTemplate("")
		if err != nil {
			slog.Error("reader template unavailable", "error", err)
		}
		h.page = page
	}
	return h
}

// Routes returns the API mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dictionary", h.searchDictionary)
	mux.HandleFunc("POST /api/segment", h.segment)
	mux.HandleFunc("POST /api/furigana", h.furigana)
	mux.HandleFunc("GET /api/stories", h.requireStories(h.listStories))
	mux.HandleFunc("POST /api/stories", h.requireStories(h.createStory))
	mux.HandleFunc("GET /api/stories/{id}", h.requireStories(h.getStory))
	mux.HandleFunc("DELETE /api/stories/{id}", h.requireStories(h.deleteStory))
	mux.HandleFunc("GET /api/stories/{id}/render", h.requireStories(h.renderStory))
	mux.HandleFunc("GET /api/stories/{id}/tokens", h.requireStories(h.storyTokens))
	mux.HandleFunc("GET /read/{id}", h.requireStories(h.readStory))
	mux.HandleFunc("GET /healthz", h.health)
	return mux
}

type dictionaryResponse struct {
	Success bool                         `json:"success"`
	Data    []dictionary.DictionaryEntry `json:"data"`
	Count   int                          `json:"count"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) searchDictionary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.looker.Lookup(r.Context(), r.URL.Query().Get("keyword"))
	switch {
	case errors.Is(err, lookup.ErrKeywordRequired):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Keyword is required"})
		return
	case errors.Is(err, lookup.ErrEmptyKeyword):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Keyword is empty after cleaning"})
		return
	case err != nil:
		slog.Error("dictionary lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
		return
	}
	if entries == nil {
		entries = []dictionary.DictionaryEntry{}
	}
	writeJSON(w, http.StatusOK, dictionaryResponse{Success: true, Data: entries, Count: len(entries)})
}

type segmentRequest struct {
	Markup       string `json:"markup"`
	OriginalText string `json:"originalText"`
}

func (h *Handler) segment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, segment.Segment(req.Markup, req.OriginalText))
}

type furiganaRequest struct {
	Text string `json:"text"`
}

func (h *Handler) furigana(w http.ResponseWriter, r *http.Request) {
	var req furiganaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.render(r.Context(), req.Text, true))
}

// render segments text, annotated with furigana when requested. A failed
// annotation falls back to the plain text.
func (h *Handler) render(ctx context.Context, text string, furigana bool) segment.Result {
	rd := reader.New(text, h.annotator)
	if furigana {
		if err := rd.SetFurigana(ctx, true); err != nil {
			slog.Warn("furigana unavailable", "error", err)
		}
	}
	return rd.Render()
}

type healthResponse struct {
	Status          string           `json:"status"`
	DictionaryState string           `json:"dictionaryState"`
	Dictionary      dictionary.Stats `json:"dictionary"`
	Analyzer        string           `json:"analyzer"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dictionary.Stats(r.Context())
	if err != nil {
		slog.Error("dictionary stats failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:          "unavailable",
			DictionaryState: h.dictionary.State().String(),
			Analyzer:        h.tokenizer.Active().String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		DictionaryState: h.dictionary.State().String(),
		Dictionary:      stats,
		Analyzer:        h.tokenizer.Active().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
