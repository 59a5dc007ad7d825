package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/hrscreen/resume-screener/internal/store"
)

// DecodeScreeningCursor parses a base64 "unixnano|job_id" pagination cursor.
// An empty cursor means "from the beginning".
func DecodeScreeningCursor(cursorStr string) (*store.JobCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var createdAt int64
	if _, err := fmt.Sscanf(parts[0], "%d", &createdAt); err != nil {
		return nil, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return &store.JobCursor{
		CreatedAt: time.Unix(0, createdAt).UTC(),
		JobID:     parts[1],
	}, nil
}

// EncodeScreeningCursor is the inverse of DecodeScreeningCursor.
func EncodeScreeningCursor(cursor *store.JobCursor) string {
	raw := fmt.Sprintf("%d|%s", cursor.CreatedAt.UnixNano(), cursor.JobID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
