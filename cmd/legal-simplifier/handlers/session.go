// Package handlers provides HTTP handlers for the simplifier session API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/observability"
)

// Session is the pipeline surface driven by the HTTP layer.
type Session interface {
	State() domain.PipelineState
	SetDocumentText(text string)
	LoadFromFile(ctx context.Context, data []byte)
	Simplify(ctx context.Context) error
	SetQuestion(question string)
	AskQuestion(ctx context.Context, question string) error
}

// SessionHandler handles session requests. Every successful response is the
// current session state.
type SessionHandler struct {
	logger         *observability.Logger
	session        Session
	maxUploadBytes int64
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(logger *observability.Logger, session Session, maxUploadBytes int64) *SessionHandler {
	if logger == nil {
		logger = observability.Nop()
	}
	return &SessionHandler{
		logger:         logger.WithComponent("http"),
		session:        session,
		maxUploadBytes: maxUploadBytes,
	}
}

// DocumentRequestDTO is the body of PUT /session/document.
type DocumentRequestDTO struct {
	Text string `json:"text"`
}

// QuestionRequestDTO is the body of PUT /session/question and POST /session/ask.
type QuestionRequestDTO struct {
	Question *string `json:"question"`
}

// Get handles GET /session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// SetDocument handles PUT /session/document.
func (h *SessionHandler) SetDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.session.SetDocumentText(req.Text)
	h.writeState(w, http.StatusOK)
}

// Upload handles POST /session/document/upload. Accepts a multipart form with a
// "file" field or a raw application/pdf body.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	data, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "upload too large", err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	h.logger.Debug().Int("bytes", len(data)).Msg("Received upload")
	h.session.LoadFromFile(r.Context(), data)
	h.writeState(w, http.StatusOK)
}

func (h *SessionHandler) readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Simplify handles POST /session/simplify.
func (h *SessionHandler) Simplify(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Simplify(r.Context()); err != nil {
		h.writeBusy(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// SetQuestion handles PUT /session/question.
func (h *SessionHandler) SetQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	question := ""
	if req.Question != nil {
		question = *req.Question
	}
	h.session.SetQuestion(question)
	h.writeState(w, http.StatusOK)
}

// Ask handles POST /session/ask. Without a question in the body the draft
// question is asked.
func (h *SessionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	question := h.session.State().Question
	if req.Question != nil {
		question = *req.Question
	}

	if err := h.session.AskQuestion(r.Context(), question); err != nil {
		h.writeBusy(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *SessionHandler) writeBusy(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrBusy) {
		h.writeState(w, http.StatusConflict)
		return
	}
	h.logger.Error().Err(err).Msg("Unexpected pipeline error")
	h.writeError(w, http.StatusInternalServerError, "internal error", domain.UserMessage(err))
}

func (h *SessionHandler) writeState(w http.ResponseWriter, status int) {
	h.writeJSON(w, status, h.session.State())
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	h.writeJSON(w, status, resp)
}
