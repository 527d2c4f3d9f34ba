package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kotoba-reader/kotoba/internal/assets"
	"github.com/kotoba-reader/kotoba/internal/segment"
	"github.com/kotoba-reader/kotoba/internal/story"
)

func (h *Handler) requireStories(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.stories == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Story store is disabled"})
			return
		}
		next(w, r)
	}
}

// writeStoryError maps repository errors to responses.
func writeStoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, story.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid story ID format"})
	case errors.Is(err, story.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, story.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Story not found"})
	default:
		slog.Error("story store failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

type storiesResponse struct {
	Stories []story.Story `json:"stories"`
}

func (h *Handler) listStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.stories.FindAll(r.Context())
	if err != nil {
		writeStoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storiesResponse{Stories: stories})
}

type storyResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Story   *story.Story `json:"story,omitempty"`
}

func (h *Handler) createStory(w http.ResponseWriter, r *http.Request) {
	var s story.Story
	if !decodeJSON(w, r, &s) {
		return
	}
	if err := h.stories.Create(r.Context(), &s); err != nil {
		writeStoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, storyResponse{Success: true, Message: "Story created successfully", Story: &s})
}

func (h *Handler) getStory(w http.ResponseWriter, r *http.Request) {
	s, err := h.stories.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storyResponse{Success: true, Story: s})
}

func (h *Handler) deleteStory(w http.ResponseWriter, r *http.Request) {
	if err := h.stories.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeStoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storyResponse{Success: true, Message: "Story deleted successfully"})
}

type renderResponse struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Furigana bool           `json:"furigana"`
	HTML     string         `json:"html"`
	Units    []segment.Unit `json:"units"`
}

// furiganaParam reads the optional furigana query parameter.
func furiganaParam(w http.ResponseWriter, r *http.Request) (furigana bool, ok bool) {
	v := r.URL.Query().Get("furigana")
	if v == "" {
		return false, true
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "furigana must be true or false"})
		return false, false
	}
	return parsed, true
}

func (h *Handler) renderStory(w http.ResponseWriter, r *http.Request) {
	furigana, ok := furiganaParam(w, r)
	if !ok {
		return
	}

	s, err := h.stories.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoryError(w, err)
		return
	}
	result := h.render(r.Context(), s.Body, furigana)
	writeJSON(w, http.StatusOK, renderResponse{
		ID:       s.ID,
		Title:    s.Title,
		Furigana: furigana,
		HTML:     result.HTML,
		Units:    result.Units,
	})
}

type tokensResponse struct {
	Tokens   []string `json:"tokens"`
	Strategy string   `json:"strategy"`
}

func (h *Handler) storyTokens(w http.ResponseWriter, r *http.Request) {
	s, err := h.stories.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoryError(w, err)
		return
	}
	result, err := h.tokenizer.Tokenize(r.Context(), s.Body)
	if err != nil {
		slog.Error("tokenize failed", "id", s.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, tokensResponse{Tokens: result.Tokens, Strategy: result.Strategy.String()})
}

// readStory serves a story as a reading page.
func (h *Handler) readStory(w http.ResponseWriter, r *http.Request) {
	furigana, ok := furiganaParam(w, r)
	if !ok {
		return
	}

	s, err := h.stories.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoryError(w, err)
		return
	}
	page := assets.NewReaderPage(s.Title, s.JapaneseLevel, furigana, h.render(r.Context(), s.Body, furigana))

	var b bytes.Buffer
	if err := assets.WriteReaderPage(&b, h.page, page); err != nil {
		slog.Error("reader page failed", "id", s.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := b.WriteTo(w); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
