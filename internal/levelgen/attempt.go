package levelgen

import (
	"context"
	"time"
)

// Attempt is the record of one generation attempt.
type Attempt struct {
	SongKey    string
	Seed       int64
	Offset     int
	Difficulty int
	Success    bool
	FailureX   float64
	FailureY   float64
	Iterations int
	Progress   float64
	Elapsed    time.Duration
}

// AttemptRecorder receives a record of every finished attempt.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}
