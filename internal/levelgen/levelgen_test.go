package levelgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/AppIemon/umm-sub002/internal/autoplay"
	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/song"
)

type memRecorder struct {
	mu       sync.Mutex
	attempts []Attempt
}

func (r *memRecorder) RecordAttempt(_ context.Context, a Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return nil
}

func shortSong() song.Features {
	return song.Features{
		BeatTimes: []float64{0.5, 1.0, 1.5, 2.0},
		BPM:       120,
		Duration:  3,
	}
}

func longerSong() song.Features {
	return song.Features{
		BeatTimes: []float64{0.5, 1, 1.5, 2, 2.25, 2.5, 3, 3.5, 4, 4.5, 5, 5.5, 6},
		Sections:  []song.Section{{Start: 0, End: 3, Intensity: 0.3}, {Start: 3, End: 7, Intensity: 0.9}},
		BPM:       120,
		Duration:  7,
	}
}

func newGenerator(difficulty int) *Generator {
	cfg := config.Default()
	cfg.Map.Difficulty = difficulty
	return New(cfg, log.New(io.Discard))
}

func checkLevel(t *testing.T, cfg config.Config, l *level.Level) {
	t.Helper()
	for i := 1; i < len(l.Obstacles); i++ {
		if l.Obstacles[i].X < l.Obstacles[i-1].X {
			t.Fatalf("obstacles not sorted at %d", i)
		}
	}
	for i := 1; i < len(l.Portals); i++ {
		if l.Portals[i].X < l.Portals[i-1].X {
			t.Fatalf("portals not sorted at %d", i)
		}
	}
	if !l.Validation.Success {
		return
	}
	path := l.ReferencePath
	if last := path[len(path)-1]; last.X < l.Length*0.99 {
		t.Errorf("validated path ends at %.1f of %.1f", last.X, l.Length)
	}
	m := cfg.Map
	for i, p := range path {
		if p.Y < m.MinY+m.Margin || p.Y > m.MaxY-m.Margin {
			t.Fatalf("point %d outside the play field: %.2f", i, p.Y)
		}
		if i > 0 && p.X < path[i-1].X {
			t.Fatalf("x decreases at %d", i)
		}
	}
	if i := autoplay.Replay(cfg, l.Obstacles, l.Portals, path); i >= 0 {
		t.Errorf("validated path collides at point %d", i)
	}
}

func TestShortSongValidates(t *testing.T) {
	g := newGenerator(5)
	l, err := g.Generate(context.Background(), shortSong(), 42)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !l.Validation.Success {
		t.Fatal("level not validated")
	}
	if l.Attempts < 1 || l.Attempts > g.Config.Generation.MaxAttempts {
		t.Errorf("attempts = %d", l.Attempts)
	}
	checkLevel(t, g.Config, l)
}

func TestDeterministic(t *testing.T) {
	a, errA := newGenerator(12).Generate(context.Background(), longerSong(), 7)
	b, errB := newGenerator(12).Generate(context.Background(), longerSong(), 7)
	if (errA == nil) != (errB == nil) {
		t.Fatalf("errors differ: %v / %v", errA, errB)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same seed produced different levels")
	}
	if a.Attempts != b.Attempts {
		t.Errorf("attempts differ: %d / %d", a.Attempts, b.Attempts)
	}
}

func TestOffsetVariesOutput(t *testing.T) {
	g := newGenerator(10)
	ctx := context.Background()
	a, err := g.GenerateOffset(ctx, longerSong(), 42, 0)
	if err != nil {
		t.Fatalf("GenerateOffset(0) error: %v", err)
	}
	b, err := g.GenerateOffset(ctx, longerSong(), 42, 1)
	if err != nil {
		t.Fatalf("GenerateOffset(1) error: %v", err)
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different offsets produced the same level")
	}
	for _, l := range []*level.Level{a, b} {
		checkLevel(t, g.Config, l)
		if !l.Validation.Success && (l.Validation.FailureX < 0 || l.Validation.FailureX > l.Length) {
			t.Errorf("failure x %.1f outside the level", l.Validation.FailureX)
		}
	}

	again, _ := g.GenerateOffset(ctx, longerSong(), 42, 1)
	if again.Fingerprint() != b.Fingerprint() {
		t.Error("same offset is not reproducible")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	for _, difficulty := range []int{5, 20} {
		seq, errSeq := newGenerator(difficulty).Generate(context.Background(), longerSong(), 99)
		par, errPar := newGenerator(difficulty).GenerateParallel(context.Background(), longerSong(), 99, 3)
		if (errSeq == nil) != (errPar == nil) {
			t.Fatalf("difficulty %d: errors differ: %v / %v", difficulty, errSeq, errPar)
		}
		if seq.Fingerprint() != par.Fingerprint() || seq.Offset != par.Offset || seq.Attempts != par.Attempts {
			t.Errorf("difficulty %d: parallel result differs from sequential", difficulty)
		}
	}
}

func TestExhaustedAttempts(t *testing.T) {
	for _, workers := range []int{1, 2} {
		var buf bytes.Buffer
		rec := &memRecorder{}
		cfg := config.Default()
		cfg.Search.MaxIterations = 1
		cfg.Generation.MaxAttempts = 3
		g := &Generator{Config: cfg, Logger: log.New(&buf), Recorder: rec}

		l, err := g.GenerateParallel(context.Background(), shortSong(), 1, workers)
		if !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("workers %d: error = %v, expected ErrGenerationFailed", workers, err)
		}
		if l == nil || l.Validation.Success || l.Attempts != 3 {
			t.Fatalf("workers %d: unexpected last level %+v", workers, l)
		}
		if len(rec.attempts) != 3 {
			t.Errorf("workers %d: recorded %d attempts", workers, len(rec.attempts))
		}
		for i, a := range rec.attempts {
			if a.Offset != i || a.Success || a.SongKey == "" {
				t.Errorf("workers %d: attempt %d = %+v", workers, i, a)
			}
		}
		out := buf.String()
		for _, msg := range []string{
			"generation attempt 1 failed, retrying",
			"generation attempt 2 failed, retrying",
			"generation failed after 3 attempts",
		} {
			if !strings.Contains(out, msg) {
				t.Errorf("workers %d: log missing %q", workers, msg)
			}
		}
		if strings.Contains(out, "generation attempt 3 failed, retrying") {
			t.Errorf("workers %d: last attempt should not announce a retry", workers)
		}
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newGenerator(5).Generate(ctx, shortSong(), 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, expected context.Canceled", err)
	}
	if _, err := newGenerator(5).GenerateParallel(ctx, shortSong(), 1, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateParallel() error = %v, expected context.Canceled", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	g := newGenerator(0)
	if _, err := g.Generate(context.Background(), shortSong(), 1); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Generate() error = %v, expected ErrInvalidConfig", err)
	}
	if _, err := g.GenerateOffset(context.Background(), shortSong(), 1, 0); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("GenerateOffset() error = %v, expected ErrInvalidConfig", err)
	}
}

func TestBuildAndPump(t *testing.T) {
	g := newGenerator(5)
	var calls int
	g.OnProgress = func(int, autoplay.Progress) { calls++ }

	d, err := g.Build(shortSong(), 42, 0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if d.Level.Validation.Iterations != 0 || len(d.Level.ReferencePath) == 0 {
		t.Fatal("draft should carry the unverified path")
	}
	for !d.Validator.Step(50).Done {
	}
	l := d.Finish()

	ref, err := g.GenerateOffset(context.Background(), shortSong(), 42, 0)
	if err != nil {
		t.Fatalf("GenerateOffset() error: %v", err)
	}
	if l.Fingerprint() != ref.Fingerprint() {
		t.Error("pumped draft differs from GenerateOffset")
	}
	if calls == 0 {
		t.Error("OnProgress never called")
	}
	if a := d.Attempt(); a.Seed != 42 || a.Iterations != l.Validation.Iterations {
		t.Errorf("Attempt() = %+v", a)
	}
}
