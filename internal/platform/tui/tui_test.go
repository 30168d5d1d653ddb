package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/levelgen"
	"github.com/AppIemon/umm-sub002/internal/song"
	"github.com/AppIemon/umm-sub002/internal/storage"
)

func testSong() song.Features {
	return song.Features{
		BeatTimes: []float64{0.5, 1.0, 1.5, 2.0},
		BPM:       120,
		Duration:  3,
	}
}

func newGenerator(cfg config.Config) *levelgen.Generator {
	return levelgen.New(cfg, log.New(io.Discard))
}

func pump(t *testing.T, m ProgressModel) ProgressModel {
	t.Helper()
	for i := 0; i < 100000 && !m.Done(); i++ {
		next, _ := m.Update(TickMsg(time.Time{}))
		m = next.(ProgressModel)
	}
	if !m.Done() {
		t.Fatal("model never finished")
	}
	return m
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestProgressMatchesGenerate(t *testing.T) {
	cfg := config.Default()
	cfg.Map.Difficulty = 5
	ctx := context.Background()

	m := pump(t, NewProgressModel(ctx, newGenerator(cfg), testSong(), 42, Options{StepsPerTick: 300}))
	got, err := m.Result()
	if err != nil {
		t.Fatalf("Result() error: %v", err)
	}

	want, err := newGenerator(cfg).Generate(ctx, testSong(), 42)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got.Fingerprint() != want.Fingerprint() || got.Attempts != want.Attempts {
		t.Error("progress screen produced a different level than Generate")
	}
	if !strings.Contains(m.View(), "level validated") {
		t.Error("view does not announce success")
	}
}

func TestProgressExhausted(t *testing.T) {
	cfg := config.Default()
	cfg.Search.MaxIterations = 1
	cfg.Generation.MaxAttempts = 2

	m := pump(t, NewProgressModel(context.Background(), newGenerator(cfg), testSong(), 1, Options{}))
	l, err := m.Result()
	if !errors.Is(err, levelgen.ErrGenerationFailed) {
		t.Fatalf("Result() error = %v, expected ErrGenerationFailed", err)
	}
	if l == nil || l.Attempts != 2 {
		t.Fatalf("unexpected last level %+v", l)
	}
	view := m.View()
	for _, msg := range []string{"generation attempt 1 failed, retrying", "generation failed after 2 attempts"} {
		if !strings.Contains(view, msg) {
			t.Errorf("view missing %q", msg)
		}
	}
}

func TestProgressInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Map.Difficulty = 0
	m := NewProgressModel(context.Background(), newGenerator(cfg), testSong(), 1, Options{})
	if !m.Done() {
		t.Fatal("invalid config should finish immediately")
	}
	if _, err := m.Result(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Result() error = %v, expected ErrInvalidConfig", err)
	}
	if m.Init() == nil {
		t.Error("Init() should quit")
	}
}

func TestProgressCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := pump(t, NewProgressModel(ctx, newGenerator(config.Default()), testSong(), 1, Options{}))
	if _, err := m.Result(); !errors.Is(err, context.Canceled) {
		t.Errorf("Result() error = %v, expected context.Canceled", err)
	}
}

func TestProgressKeys(t *testing.T) {
	m := NewProgressModel(context.Background(), newGenerator(config.Default()), testSong(), 1, Options{StepsPerTick: 1})

	next, _ := m.Update(keyMsg('p'))
	m = next.(ProgressModel)
	if !m.paused {
		t.Fatal("p should pause")
	}
	next, _ = m.Update(TickMsg(time.Time{}))
	m = next.(ProgressModel)
	if m.status.Iterations != 0 {
		t.Error("validator advanced while paused")
	}

	next, _ = m.Update(keyMsg('p'))
	m = next.(ProgressModel)
	next, _ = m.Update(TickMsg(time.Time{}))
	m = next.(ProgressModel)
	if m.status.Iterations != 1 {
		t.Errorf("iterations = %d after one tick", m.status.Iterations)
	}

	next, _ = m.Update(keyMsg('v'))
	m = next.(ProgressModel)
	if !m.showPreview || !strings.Contains(m.View(), string(GlyphTerrain)) {
		t.Error("preview not shown")
	}

	_, cmd := m.Update(keyMsg('q'))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func testLevel() *level.Level {
	path := make([]level.PathPoint, 0, 40)
	for x := 0.0; x < 400; x += 10 {
		path = append(path, level.PathPoint{Time: x / 300, X: x, Y: 100})
	}
	return &level.Level{
		Length: 400,
		Obstacles: []level.Obstacle{
			level.NewObstacle(level.KindBlock, level.RoleTerrain, 0, 432, 400, 48),
			level.NewObstacle(level.KindBlock, level.RoleHazard, 200, 200, 40, 40),
			level.NewObstacle(level.KindOrb, level.RoleDecoration, 350, 370, 20, 20),
		},
		Portals:       []level.Portal{level.NewPortal(level.PortalGravityOn, 100, 240)},
		ReferencePath: path,
		Validation:    level.ValidationResult{FailureX: 300, FailureY: 300, Iterations: 10},
	}
}

func TestPreviewDraw(t *testing.T) {
	p := Preview{Config: config.Default(), Level: testLevel()}
	s := p.Draw(40, 10)
	if s.Width() != 40 || s.Height() != 10 {
		t.Fatalf("screen is %dx%d", s.Width(), s.Height())
	}

	tests := []struct {
		name     string
		col, row int
		want     rune
	}{
		{"floor", 0, 9, GlyphTerrain},
		{"floor end", 39, 9, GlyphTerrain},
		{"hazard", 21, 4, GlyphHazard},
		{"above hazard", 21, 3, GlyphEmpty},
		{"portal", 10, 4, GlyphPortal},
		{"decoration", 35, 7, GlyphDecoration},
		{"path", 15, 2, GlyphPath},
		{"failure", 30, 6, GlyphFailure},
		{"open air", 5, 6, GlyphEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Get(tt.col, tt.row); got != tt.want {
				t.Errorf("cell (%d,%d) = %q, want %q\n%s", tt.col, tt.row, got, tt.want, s.String())
			}
		})
	}
}

func TestPreviewWindowAndSuccess(t *testing.T) {
	l := testLevel()
	l.Validation = level.ValidationResult{Success: true, Iterations: 10}

	// Only the right half of the level: the hazard starts the window.
	s := Preview{Config: config.Default(), Level: l, From: 200, To: 400}.Draw(20, 10)
	if s.Get(0, 4) != GlyphHazard {
		t.Errorf("windowed hazard missing\n%s", s.String())
	}
	if strings.ContainsRune(s.String(), GlyphFailure) {
		t.Error("validated level should not show a failure marker")
	}
}

func TestPreviewEmpty(t *testing.T) {
	if s := (Preview{Config: config.Default()}).Draw(10, 4); strings.TrimSpace(s.String()) != "" {
		t.Error("nil level should draw nothing")
	}
	if s := (Preview{Config: config.Default(), Level: testLevel()}).Draw(0, 0); s.Width() != 0 {
		t.Error("zero size screen expected")
	}
}

func TestRenderScreen(t *testing.T) {
	s := Preview{Config: config.Default(), Level: testLevel()}.Draw(40, 10)
	out := RenderScreen(s, DefaultTheme())
	if lines := strings.Count(out, "\n") + 1; lines != 10 {
		t.Errorf("rendered %d lines, want 10", lines)
	}
	for _, g := range []rune{GlyphTerrain, GlyphHazard, GlyphPortal, GlyphPath} {
		if !strings.ContainsRune(out, g) {
			t.Errorf("rendered output missing %q", g)
		}
	}
}

type fakeHistory struct {
	levels   []storage.LevelRecord
	attempts map[string][]storage.AttemptEntry
}

func (f fakeHistory) RecentLevels(context.Context, int) ([]storage.LevelRecord, error) {
	return f.levels, nil
}

func (f fakeHistory) AttemptsForSong(_ context.Context, key string, _ int) ([]storage.AttemptEntry, error) {
	return f.attempts[key], nil
}

func TestHistoryModel(t *testing.T) {
	src := fakeHistory{
		levels: []storage.LevelRecord{
			{ID: "aaaaaaaa-1111", SongKey: "k1", Title: "First", Seed: 1, CreatedAt: time.Now()},
			{ID: "bbbbbbbb-2222", SongKey: "k2", Title: "Second", Seed: 2, CreatedAt: time.Now()},
		},
		attempts: map[string][]storage.AttemptEntry{
			"k1": {{Attempt: levelgen.Attempt{Seed: 1, Success: true}}},
			"k2": {{Attempt: levelgen.Attempt{Seed: 2, Progress: 0.5, FailureX: 800}}, {Attempt: levelgen.Attempt{Seed: 2, Offset: 1, Success: true}}},
		},
	}
	m := NewHistoryModel(context.Background(), src, 120, 30)
	if len(m.attempts) != 1 {
		t.Fatalf("attempts for first level = %d", len(m.attempts))
	}
	view := m.View()
	if !strings.Contains(view, "First") || !strings.Contains(view, "aaaaaaaa") {
		t.Error("view missing level row")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(HistoryModel)
	if len(m.attempts) != 2 {
		t.Errorf("attempts after moving down = %d", len(m.attempts))
	}
	if !strings.Contains(m.View(), "x=800") {
		t.Error("failed attempt not listed")
	}

	_, cmd := m.Update(keyMsg('q'))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestHistoryEmpty(t *testing.T) {
	m := NewHistoryModel(context.Background(), fakeHistory{}, 60, 20)
	if !strings.Contains(m.View(), "No levels saved yet") {
		t.Error("empty history message missing")
	}
}
