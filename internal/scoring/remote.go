package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrMalformedReply is returned when the scoring service reply cannot be
	// parsed or does not match the reply schema
	ErrMalformedReply = errors.New("malformed scoring reply")

	// ErrScoreOutOfRange is returned when the scoring service produced a score
	// outside [0,100]
	ErrScoreOutOfRange = errors.New("score outside valid range")
)

// replySchema is the explicit contract for the scoring service's JSON reply.
// Any reply that does not validate triggers the keyword fallback.
var replySchema = map[string]any{
	"type":     "object",
	"required": []any{"score", "summary"},
	"properties": map[string]any{
		"name":           map[string]any{"type": "string"},
		"score":          map[string]any{"type": "number"},
		"summary":        map[string]any{"type": "string"},
		"classification": map[string]any{"type": "string"},
		"matched_keywords": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

// RemoteReply is a validated reply from the remote scoring service.
type RemoteReply struct {
	Name            string   `json:"name"`
	Score           float64  `json:"score"`
	Summary         string   `json:"summary"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// RemoteConfig configures the remote scoring client.
type RemoteConfig struct {
	BaseURL        string
	Model          string
	APIKey         string
	Timeout        time.Duration
	MaxJDChars     int
	MaxResumeChars int
}

// RemoteClient scores resumes by calling an Ollama-compatible chat endpoint
// and parsing the structured JSON it returns.
type RemoteClient struct {
	cfg    RemoteConfig
	client *http.Client
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewRemoteClient builds a scoring client. The reply schema is compiled once
// up front so a bad schema fails at startup, not per request.
func NewRemoteClient(cfg RemoteConfig, logger *slog.Logger) (*RemoteClient, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxJDChars <= 0 {
		cfg.MaxJDChars = 1500
	}
	if cfg.MaxResumeChars <= 0 {
		cfg.MaxResumeChars = 3000
	}

	schemaBytes, err := json.Marshal(replySchema)
	if err != nil {
		return nil, fmt.Errorf("marshal reply schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("reply.json", bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("add reply schema: %w", err)
	}
	schema, err := compiler.Compile("reply.json")
	if err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}

	return &RemoteClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		schema: schema,
		logger: logger,
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Score sends the JD/resume pair to the scoring service and returns its
// validated reply. One retry is made on a transient transport failure;
// all other failure modes surface as errors for the engine to fall back on.
func (c *RemoteClient) Score(ctx context.Context, jd, resume string) (RemoteReply, error) {
	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: c.buildPrompt(jd, resume)},
		},
		Stream: false,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return RemoteReply{}, fmt.Errorf("encode scoring request: %w", err)
	}

	raw, err := c.post(ctx, payload)
	if err != nil {
		return RemoteReply{}, err
	}

	return c.parseReply(raw)
}

// buildPrompt asks for JSON only, truncating both texts to keep the request
// under the service's token limits.
func (c *RemoteClient) buildPrompt(jd, resume string) string {
	jd = truncate(jd, c.cfg.MaxJDChars)
	resume = truncate(resume, c.cfg.MaxResumeChars)

	return "Evaluate the resume against the job description.\n\n" +
		"Return JSON only in this exact format:\n" +
		`{"name": "Name", "score": 0-100, ` +
		`"summary": "Brief summary", ` +
		`"matched_keywords": ["keyword"]}` + "\n\n" +
		"JOB DESCRIPTION:\n" + jd + "\n\n" +
		"RESUME:\n" + resume
}

func (c *RemoteClient) post(ctx context.Context, payload []byte) ([]byte, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat"

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build scoring request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("scoring transport: %w", err)
			c.logger.Warn("Scoring service call failed",
				slog.Int("attempt", attempt+1),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()),
			)
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("scoring transport: %w", readErr)
			continue
		}

		if resp.StatusCode/100 == 5 {
			lastErr = fmt.Errorf("scoring service status %d", resp.StatusCode)
			c.logger.Warn("Scoring service returned server error",
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("scoring service status %d", resp.StatusCode)
		}

		return raw, nil
	}

	return nil, lastErr
}

// parseReply extracts the JSON object from the chat content, validates it
// against the reply schema, and checks the score range.
func (c *RemoteClient) parseReply(raw []byte) (RemoteReply, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return RemoteReply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	content := resp.Message.Content
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return RemoteReply{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedReply)
	}
	payload := []byte(content[start : end+1])

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return RemoteReply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if err := c.schema.Validate(v); err != nil {
		return RemoteReply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	var reply RemoteReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return RemoteReply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	if reply.Score < 0 || reply.Score > 100 {
		return RemoteReply{}, fmt.Errorf("%w: %.2f", ErrScoreOutOfRange, reply.Score)
	}
	if reply.Summary == "" {
		reply.Summary = "No summary available"
	}

	return reply, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
