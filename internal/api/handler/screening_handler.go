package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hrscreen/resume-screener/internal/api/dto"
	"github.com/hrscreen/resume-screener/internal/screening/domain"
	"github.com/hrscreen/resume-screener/internal/store"
)

// CreateScreening handles POST /api/v1/screenings
// Accepts a multipart form with a "jd" field and one or more "files" parts,
// validates the batch, and starts the screening job in the background.
// Validation failures reject the request before any job record exists.
func (h *ScreeningHandler) CreateScreening(c *gin.Context) {
	jd := c.PostForm("jd")
	if strings.TrimSpace(jd) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrEmptyDescription.Error(),
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Error("Invalid multipart form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid multipart form",
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrNoDocuments.Error(),
		})
		return
	}
	if len(files) > h.maxFiles {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("maximum %d files allowed per job", h.maxFiles),
		})
		return
	}

	docs := make([]domain.RawDocument, 0, len(files))
	for _, fh := range files {
		if fh.Filename == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "all files must have names",
			})
			return
		}
		format, ok := domain.FormatFromFilename(fh.Filename)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("%s has an unsupported format (allowed: .pdf, .docx, .txt)", fh.Filename),
			})
			return
		}

		f, err := fh.Open()
		if err != nil {
			h.logger.Error("Failed to open uploaded file",
				slog.String("filename", fh.Filename),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to read uploaded files",
			})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.logger.Error("Failed to read uploaded file",
				slog.String("filename", fh.Filename),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to read uploaded files",
			})
			return
		}

		docs = append(docs, domain.RawDocument{
			Filename: fh.Filename,
			Content:  content,
			Format:   format,
		})
	}

	job := &domain.Job{
		JobID:       uuid.New().String(),
		Description: jd,
		Status:      domain.JobStatusPending,
		TotalFiles:  len(docs),
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.store.CreateJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to create screening job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create screening job",
		})
		return
	}

	h.logger.Info("Screening job accepted",
		slog.String("job_id", job.JobID),
		slog.Int("total_files", job.TotalFiles),
	)

	h.orchestrator.StartJob(job, docs)

	c.JSON(http.StatusAccepted, dto.CreateScreeningResponse{
		JobID:      job.JobID,
		Status:     job.Status,
		TotalFiles: job.TotalFiles,
	})
}

// GetScreening handles GET /api/v1/screenings/:job_id
// Returns the job's status, progress, and ranked candidate list.
func (h *ScreeningHandler) GetScreening(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	job, err := h.store.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "screening job not found",
			})
			return
		}
		h.logger.Error("Failed to get screening job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get screening job",
		})
		return
	}

	candidates, err := h.store.ListCandidates(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to list candidates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list candidates",
		})
		return
	}

	resp := dto.ScreeningStatusResponse{
		JobID:      job.JobID,
		Status:     job.Status,
		Processed:  job.ProcessedFiles,
		Total:      job.TotalFiles,
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
		Candidates: make([]dto.CandidateDTO, 0, len(candidates)),
	}
	for _, cand := range candidates {
		resp.Candidates = append(resp.Candidates, toCandidateDTO(cand))
	}

	c.JSON(http.StatusOK, resp)
}

// ListScreenings handles GET /api/v1/screenings
// Lists screening jobs with optional status filtering and cursor pagination.
func (h *ScreeningHandler) ListScreenings(c *gin.Context) {
	var req dto.ListScreeningsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeScreeningCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid cursor",
		})
		return
	}

	jobs, err := h.store.ListJobs(c.Request.Context(), store.JobFilter{
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list screening jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list screening jobs",
		})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	resp := dto.ListScreeningsResponse{
		Screenings: make([]dto.ScreeningSummaryDTO, 0, len(jobs)),
	}
	for _, job := range jobs {
		resp.Screenings = append(resp.Screenings, dto.ScreeningSummaryDTO{
			JobID:     job.JobID,
			Status:    job.Status,
			Processed: job.ProcessedFiles,
			Total:     job.TotalFiles,
			CreatedAt: job.CreatedAt.Format(time.RFC3339),
		})
	}

	if hasMore {
		last := jobs[len(jobs)-1]
		resp.NextCursor = EncodeScreeningCursor(&store.JobCursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.JobID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// toCandidateDTO recomputes the classification from the stored score so it
// can never disagree with it.
func toCandidateDTO(c domain.Candidate) dto.CandidateDTO {
	return dto.CandidateDTO{
		Name:            c.Name,
		Email:           optional(c.Email),
		Phone:           optional(c.Phone),
		ProfileLink:     optional(c.ProfileLink),
		Score:           c.Score,
		Classification:  c.Classification(),
		Summary:         c.Summary,
		MatchedKeywords: keywordList(c.MatchedKeywords),
		JDKeywords:      keywordList(c.JDKeywords),
		MatchRatio:      c.MatchRatio,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func keywordList(kw []string) []string {
	if kw == nil {
		return []string{}
	}
	return kw
}
