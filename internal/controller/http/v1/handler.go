package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/frasal/image_describer/internal/domain"
	"github.com/frasal/image_describer/internal/orchestrator"
	"github.com/go-chi/chi/v5"
)

const maxImageSize = 10 << 20 // 10MB

type ImageProcessor interface {
	ProcessImage(ctx context.Context, image []byte) (*orchestrator.ProcessResult, error)
	SaveFeedback(ctx context.Context, id string, approved bool, note string) (string, error)
}

type RequestProvider interface {
	Get(id string) (domain.Request, error)
}

type ImagesHandler struct {
	processor ImageProcessor
	requests  RequestProvider
}

func NewImagesHandler(processor ImageProcessor, requests RequestProvider) *ImagesHandler {
	return &ImagesHandler{
		processor: processor,
		requests:  requests,
	}
}

type ProcessImageResponse struct {
	RequestID   string `json:"request_id"`
	Description string `json:"description"`
}

type FeedbackRequest struct {
	Approved bool   `json:"approved"`
	Note     string `json:"note"`
}

type FeedbackResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *ImagesHandler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	image, err := extractImageFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: orchestrator.ErrNoImage.Error()})
		return
	}

	result, err := h.processor.ProcessImage(r.Context(), image)
	if err != nil {
		writeJSON(w, statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, ProcessImageResponse{
		RequestID:   result.RequestID,
		Description: result.Description,
	})
}

func (h *ImagesHandler) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var feedback FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&feedback); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid feedback body"})
		return
	}

	message, err := h.processor.SaveFeedback(r.Context(), id, feedback.Approved, feedback.Note)
	if err != nil {
		writeJSON(w, statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, FeedbackResponse{Message: message})
}

func (h *ImagesHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := h.requests.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: orchestrator.ErrInvalidRequestID.Error()})
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func extractImageFromRequest(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, err
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// statusForError maps the orchestrator's user-facing failures onto HTTP
// statuses; the body always carries the plain message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrNoImage),
		errors.Is(err, orchestrator.ErrNoActiveRequest):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrInvalidRequestID):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
