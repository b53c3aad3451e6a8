package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Time      time.Time `json:"time"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Connections int    `json:"connections"`

	Details map[string]interface{} `json:"details,omitempty"`
}

// handleIndex serves the embedded upload page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.handleError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.logger.Debug("Failed to write index page: %v", err)
	}
}

// handleGenerate runs a full generation and streams the deck back as an attachment
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.readGenerationForm(w, r, true)
	if err != nil {
		s.handleFormError(w, r, err)
		return
	}
	defer cleanup()

	result, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.handleGenerationError(w, r, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename})
	w.Header().Set("Content-Type", entities.PresentationMIMEType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Document)))
	if result.Report != nil {
		w.Header().Set(slidesHeader, strconv.Itoa(result.Report.CreatedSlides))
	}
	w.Header().Set(degradedHeader, strconv.Itoa(result.Report.DegradedCount()))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Document); err != nil {
		s.logger.Warn("Failed to write deck to client: %v", err)
		return
	}
	s.logger.Success("Generated %s (%d bytes) for request %s",
		result.Filename, len(result.Document), RequestIDFromContext(r.Context()))
}

// handleOutline returns the decoded outline without populating a template
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.readGenerationForm(w, r, false)
	if err != nil {
		s.handleFormError(w, r, err)
		return
	}
	defer cleanup()

	outline, err := s.generator.DraftOutline(r.Context(), req)
	if err != nil {
		s.handleGenerationError(w, r, err)
		return
	}

	s.writeJSON(w, r, outline)
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	version := s.version
	health := s.health
	s.mu.RUnlock()

	resp := HealthResponse{
		Status:      "ok",
		Version:     version,
		Connections: s.connMgr.Count(),
	}
	if health != nil {
		resp.Details = health.HealthStatus()
		if !health.IsHealthy() {
			resp.Status = "degraded"
		}
	}

	s.writeJSON(w, r, resp)
}

// readGenerationForm reads the request fields from a multipart or urlencoded
// body. The returned cleanup releases multipart temp files.
func (s *Server) readGenerationForm(w http.ResponseWriter, r *http.Request, withTemplate bool) (*entities.GenerationRequest, func(), error) {
	cleanup := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.GetMaxUploadBytes())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.config.GetMaxUploadBytes()); err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, cleanup, err
	}

	req := &entities.GenerationRequest{
		Text:     r.FormValue("text"),
		Guidance: r.FormValue("guidance"),
		Provider: r.FormValue("provider"),
		Model:    r.FormValue("model"),
		APIKey:   r.FormValue("api_key"),
	}

	if withTemplate {
		file, header, err := r.FormFile("template")
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			// Validate reports the missing template
		case err != nil:
			return nil, cleanup, err
		default:
			req.Template = file
			req.TemplateName = header.Filename
			previous := cleanup
			cleanup = func() {
				_ = file.Close()
				previous()
			}
		}
	}

	return req, cleanup, nil
}

// handleFormError maps body read failures
func (s *Server) handleFormError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		s.handleError(w, r, err, http.StatusRequestEntityTooLarge)
		return
	}
	if errors.Is(err, multipart.ErrMessageTooLarge) {
		s.handleError(w, r, err, http.StatusRequestEntityTooLarge)
		return
	}
	s.handleError(w, r, fmt.Errorf("%w: reading form: %v", entities.ErrInvalidRequest, err), http.StatusBadRequest)
}

// handleGenerationError maps domain errors to status codes. Client errors and
// upstream failures carry their message; anything else is sanitized.
func (s *Server) handleGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		s.logger.Warn("Request %s cancelled by client: %v", RequestIDFromContext(r.Context()), err)
	case errors.Is(err, entities.ErrInvalidRequest),
		errors.Is(err, entities.ErrUnsupportedProvider),
		errors.Is(err, entities.ErrInvalidTemplate):
		s.writeError(w, r, err, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		s.writeError(w, r, err, http.StatusGatewayTimeout, "Provider request timed out")
	case errors.Is(err, entities.ErrProviderStatus),
		errors.Is(err, entities.ErrEmptyCompletion),
		errors.Is(err, entities.ErrInvalidOutline),
		errors.Is(err, entities.ErrMissingSlides):
		s.writeError(w, r, err, http.StatusBadGateway, err.Error())
	default:
		s.handleError(w, r, err, http.StatusInternalServerError)
	}
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusRequestEntityTooLarge:
		message = fmt.Sprintf("Request body exceeds %d bytes", s.config.GetMaxUploadBytes())
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}
	s.writeError(w, r, err, status, message)
}

// writeError logs the real error and writes message to the client
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, status int, message string) {
	requestID := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("HTTP error (status %d) [%s]: %v", status, requestID, err)
	} else {
		s.logger.Warn("HTTP error (status %d) [%s]: %v", status, requestID, err)
	}

	response := ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		RequestID: requestID,
		Time:      time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Debug("Failed to write JSON response: %v", err)
	}
}
