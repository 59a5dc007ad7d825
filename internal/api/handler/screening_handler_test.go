package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrscreen/resume-screener/internal/api/dto"
	"github.com/hrscreen/resume-screener/internal/api/handler"
	"github.com/hrscreen/resume-screener/internal/api/router"
	"github.com/hrscreen/resume-screener/internal/orchestrator"
	"github.com/hrscreen/resume-screener/internal/scoring"
	"github.com/hrscreen/resume-screener/internal/screening/domain"
	"github.com/hrscreen/resume-screener/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemory()
	orch := orchestrator.New(&orchestrator.Config{
		Store:  s,
		Engine: scoring.NewEngine(nil, testLogger()),
		Logger: testLogger(),
	})

	r := router.SetupRouter(&handler.Dependencies{
		Logger:       testLogger(),
		Store:        s,
		Orchestrator: orch,
		MaxFiles:     20,
	}, nil)
	return r, s
}

// multipartBody builds a screening submission with the given JD and files.
func multipartBody(t *testing.T, jd string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if jd != "" {
		require.NoError(t, w.WriteField("jd", jd))
	}
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func postScreening(r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func waitForTerminal(t *testing.T, s store.Store, jobID string) *domain.Job {
	t.Helper()

	var job *domain.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = s.GetJob(context.Background(), jobID)
		return err == nil && job.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

type failingHealth struct{}

func (failingHealth) HealthCheck(context.Context) error {
	return errors.New("database unreachable")
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy without a checker", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "healthy")
	})

	t.Run("unhealthy when the checker fails", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		s := store.NewMemory()
		r := router.SetupRouter(&handler.Dependencies{
			Logger: testLogger(),
			Store:  s,
			Orchestrator: orchestrator.New(&orchestrator.Config{
				Store:  s,
				Engine: scoring.NewEngine(nil, testLogger()),
				Logger: testLogger(),
			}),
			MaxFiles: 20,
			Health:   failingHealth{},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestCreateScreening(t *testing.T) {
	r, s := setupTestRouter(t)

	body, contentType := multipartBody(t, "go docker kubernetes", map[string]string{
		"alice.txt": "Alice Johnson\nalice@example.com\ngo docker kubernetes",
		"bob.txt":   "Bob Brown\nsome go experience",
	})
	rec := postScreening(r, body, contentType)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp dto.CreateScreeningResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.JobStatusPending, resp.Status)
	assert.Equal(t, 2, resp.TotalFiles)
	require.NotEmpty(t, resp.JobID)

	job := waitForTerminal(t, s, resp.JobID)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.ProcessedFiles)
}

func TestCreateScreening_ValidationFailures(t *testing.T) {
	manyFiles := make(map[string]string, 21)
	for i := 0; i < 21; i++ {
		manyFiles[uuid.New().String()+".txt"] = "content"
	}

	tests := []struct {
		name      string
		jd        string
		files     map[string]string
		errString string
	}{
		{
			name:      "empty job description",
			jd:        "",
			files:     map[string]string{"a.txt": "content"},
			errString: "job description cannot be empty",
		},
		{
			name:      "whitespace job description",
			jd:        "   ",
			files:     map[string]string{"a.txt": "content"},
			errString: "job description cannot be empty",
		},
		{
			name:      "no files",
			jd:        "go developer",
			files:     nil,
			errString: "at least one document",
		},
		{
			name:      "too many files",
			jd:        "go developer",
			files:     manyFiles,
			errString: "maximum 20 files",
		},
		{
			name:      "unsupported format",
			jd:        "go developer",
			files:     map[string]string{"resume.exe": "content"},
			errString: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, s := setupTestRouter(t)

			body, contentType := multipartBody(t, tt.jd, tt.files)
			rec := postScreening(r, body, contentType)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.errString)

			// a rejected submission leaves no job behind
			jobs, err := s.ListJobs(context.Background(), store.JobFilter{PageSize: 10})
			require.NoError(t, err)
			assert.Empty(t, jobs)
		})
	}
}

func TestGetScreening(t *testing.T) {
	r, s := setupTestRouter(t)

	body, contentType := multipartBody(t, "go docker kubernetes grpc postgres", map[string]string{
		"strong.txt": "Alice Johnson\nalice@example.com\ngo docker kubernetes grpc postgres",
		"weak.txt":   "Bob Brown\nunrelated retail experience",
	})
	rec := postScreening(r, body, contentType)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created dto.CreateScreeningResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	waitForTerminal(t, s, created.JobID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+created.JobID, nil)
	getRec := httptest.NewRecorder()
	r.ServeHTTP(getRec, req)

	require.Equal(t, http.StatusOK, getRec.Code)

	var status dto.ScreeningStatusResponse
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &status))

	assert.Equal(t, domain.JobStatusCompleted, status.Status)
	assert.Equal(t, 2, status.Processed)
	assert.Equal(t, 2, status.Total)
	require.Len(t, status.Candidates, 2)

	top := status.Candidates[0]
	assert.Equal(t, "Alice Johnson", top.Name)
	assert.Equal(t, 100.0, top.Score)
	assert.Equal(t, domain.ClassificationExcellent, top.Classification)
	require.NotNil(t, top.Email)
	assert.Equal(t, "alice@example.com", *top.Email)
	assert.NotEmpty(t, top.MatchedKeywords)

	bottom := status.Candidates[1]
	assert.Equal(t, domain.ClassificationWeak, bottom.Classification)
	assert.Nil(t, bottom.Email)
}

func TestGetScreening_Errors(t *testing.T) {
	r, _ := setupTestRouter(t)

	t.Run("invalid uuid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListScreenings(t *testing.T) {
	r, s := setupTestRouter(t)

	var jobIDs []string
	for i := 0; i < 3; i++ {
		body, contentType := multipartBody(t, "go developer", map[string]string{
			"resume.txt": "Jane Doe\ngo developer",
		})
		rec := postScreening(r, body, contentType)
		require.Equal(t, http.StatusAccepted, rec.Code)

		var created dto.CreateScreeningResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		jobIDs = append(jobIDs, created.JobID)
	}
	for _, id := range jobIDs {
		waitForTerminal(t, s, id)
	}

	t.Run("lists all jobs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.ListScreeningsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Screenings, 3)
		assert.Empty(t, resp.NextCursor)
	})

	t.Run("paginates with cursor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings?page_size=2", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var first dto.ListScreeningsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
		assert.Len(t, first.Screenings, 2)
		require.NotEmpty(t, first.NextCursor)

		req = httptest.NewRequest(http.MethodGet, "/api/v1/screenings?page_size=2&cursor="+url.QueryEscape(first.NextCursor), nil)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		var second dto.ListScreeningsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
		assert.Len(t, second.Screenings, 1)
		assert.Empty(t, second.NextCursor)
	})

	t.Run("status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings?status=COMPLETED", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.ListScreeningsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Screenings, 3)
	})

	t.Run("rejects malformed cursor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings?cursor=!!not-base64!!", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
