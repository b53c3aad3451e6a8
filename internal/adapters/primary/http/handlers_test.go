package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

func newTestServer(generator *MockGenerationService) *Server {
	return NewServer(generator, nil, getTestServerConfig(), &entities.LoggingConfig{Level: "error"})
}

// multipartRequest builds a POST with the given fields and an optional template file
func multipartRequest(t *testing.T, path string, fields map[string]string, template []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if template != nil {
		part, err := writer.CreateFormFile("template", "corporate.pptx")
		require.NoError(t, err)
		_, err = part.Write(template)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

var validFields = map[string]string{
	"text":     "Intro\n- a\n- b",
	"guidance": "short",
	"provider": "openai",
	"model":    "gpt-4o-mini",
	"api_key":  "sk-test",
}

func TestHandleGenerate(t *testing.T) {
	t.Run("returns deck as attachment", func(t *testing.T) {
		generator := new(MockGenerationService)
		document := []byte("PK\x03\x04deck")
		generator.On("Generate", mock.Anything, mock.MatchedBy(func(req *entities.GenerationRequest) bool {
			if req.Template == nil {
				return false
			}
			content, err := io.ReadAll(req.Template)
			return err == nil &&
				string(content) == "template-bytes" &&
				req.Text == "Intro\n- a\n- b" &&
				req.Guidance == "short" &&
				req.Provider == "openai" &&
				req.Model == "gpt-4o-mini" &&
				req.APIKey == "sk-test" &&
				req.TemplateName == "corporate.pptx"
		})).Return(&entities.GenerationResult{
			ID:       "gen-1",
			Filename: entities.DefaultOutputFilename,
			Document: document,
			Report: &entities.PopulationReport{
				CreatedSlides: 2,
				Slides: []entities.SlideOutcome{
					{Index: 0, TitleStatus: entities.FieldApplied, BodyStatus: entities.FieldApplied, NotesStatus: entities.FieldSkipped},
					{Index: 1, TitleStatus: entities.FieldApplied, BodyStatus: entities.FieldDegraded, NotesStatus: entities.FieldSkipped},
				},
			},
		}, nil)

		server := newTestServer(generator)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, multipartRequest(t, "/generate", validFields, []byte("template-bytes")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.PresentationMIMEType, w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=generated_presentation.pptx`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "2", w.Header().Get(slidesHeader))
		assert.Equal(t, "1", w.Header().Get(degradedHeader))
		assert.NotEmpty(t, w.Header().Get(requestIDHeader))
		assert.Equal(t, document, w.Body.Bytes())
		generator.AssertExpectations(t)
	})

	errorCases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "invalid request",
			err:         fmt.Errorf("%w: api_key is required", entities.ErrInvalidRequest),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid generation request: api_key is required",
		},
		{
			name:        "unsupported provider",
			err:         fmt.Errorf("%w: claude", entities.ErrUnsupportedProvider),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "unsupported provider: claude",
		},
		{
			name:        "bad template",
			err:         fmt.Errorf("populating template: %w", entities.ErrInvalidTemplate),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "populating template: invalid presentation template",
		},
		{
			name:        "provider status",
			err:         fmt.Errorf("calling provider: %w", &entities.ProviderError{Provider: "openai", StatusCode: 401, Body: "bad key"}),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "calling provider: provider openai returned status 401: bad key",
		},
		{
			name:        "missing slides",
			err:         &entities.OutlineError{Err: entities.ErrMissingSlides, Raw: `{"items":[]}`},
			wantStatus:  http.StatusBadGateway,
			wantMessage: `LLM did not return a 'slides' key in the JSON. Response received: {"items":[]}`,
		},
		{
			name:        "empty completion",
			err:         fmt.Errorf("calling provider: %w", entities.ErrEmptyCompletion),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "calling provider: provider returned no completion",
		},
		{
			name:        "provider timeout",
			err:         fmt.Errorf("calling provider: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusGatewayTimeout,
			wantMessage: "Provider request timed out",
		},
		{
			name:        "unexpected failure is sanitized",
			err:         errors.New("reading generated deck: /tmp/deckgen-123/output.pptx: permission denied"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			generator := new(MockGenerationService)
			generator.On("Generate", mock.Anything, mock.Anything).Return(nil, tc.err)

			server := newTestServer(generator)
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, multipartRequest(t, "/generate", validFields, []byte("template-bytes")))

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			resp := decodeError(t, w)
			assert.Equal(t, http.StatusText(tc.wantStatus), resp.Error)
			assert.Equal(t, tc.wantMessage, resp.Message)
			assert.Equal(t, w.Header().Get(requestIDHeader), resp.RequestID)
			assert.False(t, resp.Time.IsZero())
		})
	}

	t.Run("missing template reaches validation", func(t *testing.T) {
		generator := new(MockGenerationService)
		generator.On("Generate", mock.Anything, mock.MatchedBy(func(req *entities.GenerationRequest) bool {
			return req.Template == nil
		})).Return(nil, fmt.Errorf("%w: template file is required", entities.ErrInvalidRequest))

		server := newTestServer(generator)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, multipartRequest(t, "/generate", validFields, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "template file is required")
		generator.AssertExpectations(t)
	})

	t.Run("oversized upload", func(t *testing.T) {
		generator := new(MockGenerationService)
		server := newTestServer(generator)

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, multipartRequest(t, "/generate", validFields, bytes.Repeat([]byte("x"), 2<<20)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("cancelled request writes nothing", func(t *testing.T) {
		generator := new(MockGenerationService)
		generator.On("Generate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("calling provider: %w", context.Canceled))

		server := newTestServer(generator)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, multipartRequest(t, "/generate", validFields, []byte("t")))

		assert.Empty(t, w.Body.String())
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		server := newTestServer(new(MockGenerationService))
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/generate", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "Method not allowed", decodeError(t, w).Message)
	})
}

func TestHandleOutline(t *testing.T) {
	t.Run("returns outline JSON", func(t *testing.T) {
		generator := new(MockGenerationService)
		generator.On("DraftOutline", mock.Anything, mock.MatchedBy(func(req *entities.GenerationRequest) bool {
			return req.Text == "some text" && req.APIKey == "sk-test" && req.Template == nil
		})).Return(&entities.Outline{Slides: []entities.SlideDescriptor{
			{Title: "Intro", Content: []string{"a", "b"}, Notes: "hello"},
		}}, nil)

		form := url.Values{"text": {"some text"}, "api_key": {"sk-test"}}
		req := httptest.NewRequest(http.MethodPost, "/api/outline", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		server := newTestServer(generator)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var outline entities.Outline
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outline))
		require.Len(t, outline.Slides, 1)
		assert.Equal(t, "Intro", outline.Slides[0].Title)
		assert.Equal(t, []string{"a", "b"}, outline.Slides[0].Content)
		assert.Equal(t, "hello", outline.Slides[0].Notes)
		generator.AssertExpectations(t)
	})

	t.Run("accepts multipart", func(t *testing.T) {
		generator := new(MockGenerationService)
		generator.On("DraftOutline", mock.Anything, mock.Anything).
			Return(&entities.Outline{Slides: []entities.SlideDescriptor{}}, nil)

		server := newTestServer(generator)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, multipartRequest(t, "/api/outline", validFields, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"slides":[]}`, w.Body.String())
	})

	t.Run("maps outline errors", func(t *testing.T) {
		generator := new(MockGenerationService)
		generator.On("DraftOutline", mock.Anything, mock.Anything).
			Return(nil, &entities.OutlineError{Err: entities.ErrInvalidOutline, Raw: "not json"})

		server := newTestServer(generator)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, multipartRequest(t, "/api/outline", validFields, nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "Response received: not json")
	})
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(new(MockGenerationService))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"dev","connections":0}`, w.Body.String())
}

type stubHealth struct {
	healthy bool
}

func (h stubHealth) IsHealthy() bool { return h.healthy }

func (h stubHealth) HealthStatus() map[string]interface{} {
	return map[string]interface{}{"healthy": h.healthy, "goroutines": 7}
}

func TestHandleHealthWithReporter(t *testing.T) {
	tests := []struct {
		name     string
		reporter stubHealth
		expected string
	}{
		{"healthy", stubHealth{healthy: true}, `{"status":"ok","version":"dev","connections":0,"details":{"healthy":true,"goroutines":7}}`},
		{"unhealthy", stubHealth{healthy: false}, `{"status":"degraded","version":"dev","connections":0,"details":{"healthy":false,"goroutines":7}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(new(MockGenerationService))
			server.SetHealthReporter(tt.reporter)

			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
		})
	}
}

func TestStaticAssets(t *testing.T) {
	server := newTestServer(new(MockGenerationService))

	t.Run("index page", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		body := w.Body.String()
		for _, id := range []string{"text", "guidance", "provider", "model", "api_key", "template", "go", "status"} {
			assert.Contains(t, body, fmt.Sprintf(`id="%s"`, id))
		}
		assert.Contains(t, body, `src="/static/app.js"`)
	})

	t.Run("app script", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "javascript")
		assert.Contains(t, w.Body.String(), "fetch('/generate'")
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Resource not found", decodeError(t, w).Message)
	})
}
