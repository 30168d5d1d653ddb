package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AppIemon/umm-sub002/internal/autoplay"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/levelgen"
	"github.com/AppIemon/umm-sub002/internal/song"
)

// ErrInterrupted is returned by Run when the user quits before generation
// finishes.
var ErrInterrupted = errors.New("tui: generation interrupted")

// Progress screen constants
const (
	defaultTickRate = 30
	defaultWidth    = 80
	maxStatusLines  = 6
	previewHeight   = 12
)

// Options configures the progress screen.
type Options struct {
	TickRate     int    // ticks per second
	StepsPerTick int    // validator iterations per tick, 0 = 5x the generation step burst
	Theme        *Theme // nil = DefaultTheme
	ShowPreview  bool
}

// ProgressModel is the Bubble Tea model that runs generation attempts one
// validator burst per tick.
type ProgressModel struct {
	ctx      context.Context
	gen      *levelgen.Generator
	features song.Features
	seed     int64
	opts     Options
	theme    Theme

	offset   int
	draft    *levelgen.Draft
	status   autoplay.Progress
	messages []string

	result *level.Level
	err    error

	bar         progress.Model
	help        help.Model
	keys        KeyMap
	width       int
	paused      bool
	showPreview bool
	done        bool
	quitting    bool
}

// NewProgressModel creates a progress model. The first attempt is built
// immediately; a build error is reported by Result.
func NewProgressModel(ctx context.Context, g *levelgen.Generator, f song.Features, seed int64, opts Options) ProgressModel {
	if opts.TickRate <= 0 {
		opts.TickRate = defaultTickRate
	}
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = 5 * max(g.Config.Generation.StepBurst, 1)
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultWidth - 20

	m := ProgressModel{
		ctx:         ctx,
		gen:         g,
		features:    f,
		seed:        seed,
		opts:        opts,
		theme:       theme,
		bar:         bar,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		width:       defaultWidth,
		showPreview: opts.ShowPreview,
	}
	if err := g.Config.Validate(); err != nil {
		m.finish(nil, err)
		return m
	}
	m.startAttempt()
	return m
}

func (m *ProgressModel) startAttempt() {
	d, err := m.gen.Build(m.features, m.seed, m.offset)
	if err != nil {
		m.finish(nil, err)
		return
	}
	m.draft = d
	m.status = d.Validator.Progress()
}

func (m *ProgressModel) finish(l *level.Level, err error) {
	m.result = l
	m.err = err
	m.done = true
}

func (m *ProgressModel) addMessage(msg string) {
	m.messages = append(m.messages, msg)
	if len(m.messages) > maxStatusLines {
		m.messages = m.messages[len(m.messages)-maxStatusLines:]
	}
}

// Init starts the tick loop.
func (m ProgressModel) Init() tea.Cmd {
	if m.done {
		return tea.Quit
	}
	return tickCmd(m.opts.TickRate)
}

// Update handles messages and advances the validator.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(msg.Width-20, 10)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m ProgressModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleTick runs one validator burst and moves to the next attempt when
// the current one fails.
func (m ProgressModel) handleTick() (tea.Model, tea.Cmd) {
	if m.done {
		return m, tea.Quit
	}
	if err := m.ctx.Err(); err != nil {
		m.finish(nil, err)
		return m, tea.Quit
	}
	if m.paused {
		return m, tickCmd(m.opts.TickRate)
	}

	m.status = m.draft.Validator.Step(m.opts.StepsPerTick)
	if !m.status.Done {
		return m, tickCmd(m.opts.TickRate)
	}

	l := m.gen.Complete(m.ctx, m.draft)
	attempts := m.gen.Config.Generation.MaxAttempts
	if l.Validation.Success {
		m.addMessage(fmt.Sprintf("level validated after %d attempts", l.Attempts))
		m.finish(l, nil)
		return m, tea.Quit
	}
	if m.offset+1 >= attempts {
		m.addMessage(fmt.Sprintf("generation failed after %d attempts", attempts))
		m.finish(l, fmt.Errorf("%w after %d attempts", levelgen.ErrGenerationFailed, attempts))
		return m, tea.Quit
	}

	v := l.Validation
	m.addMessage(fmt.Sprintf("generation attempt %d failed, retrying (x=%.0f y=%.0f, %.0f%%)",
		m.offset+1, v.FailureX, v.FailureY, v.Progress*100))
	m.offset++
	m.startAttempt()
	if m.done {
		return m, tea.Quit
	}
	return m, tickCmd(m.opts.TickRate)
}

// Done reports whether generation has finished, successfully or not.
func (m ProgressModel) Done() bool {
	return m.done
}

// Result returns the generated level and error once Done reports true.
func (m ProgressModel) Result() (*level.Level, error) {
	return m.result, m.err
}

// View renders the progress screen.
func (m ProgressModel) View() string {
	if m.quitting {
		return ""
	}
	theme := m.theme
	var b strings.Builder

	b.WriteString(theme.HUDTitle.Render(centerText("L E V E L G E N", m.width)))
	b.WriteString("\n\n")

	sep := theme.HUDSeparator.Render(" | ")
	attempts := m.gen.Config.Generation.MaxAttempts
	hud := []string{
		"seed " + theme.HUDValue.Render(fmt.Sprint(m.seed)),
		"difficulty " + theme.HUDValue.Render(fmt.Sprint(m.gen.Config.Map.Difficulty)),
		"attempt " + theme.HUDValue.Render(fmt.Sprintf("%d/%d", m.offset+1, attempts)),
		"iterations " + theme.HUDValue.Render(fmt.Sprint(m.status.Iterations)),
	}
	b.WriteString(strings.Join(hud, sep))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.status.Fraction))
	if m.paused {
		b.WriteString(theme.Warning.Render("  paused"))
	}
	b.WriteString("\n\n")

	for _, msg := range m.messages {
		style := theme.Warning
		switch {
		case strings.HasPrefix(msg, "level validated"):
			style = theme.Success
		case strings.HasPrefix(msg, "generation failed"):
			style = theme.Error
		}
		b.WriteString(style.Render(msg))
		b.WriteString("\n")
	}
	if m.err != nil && !errors.Is(m.err, levelgen.ErrGenerationFailed) {
		b.WriteString(theme.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}

	if m.showPreview && m.draft != nil {
		preview := Preview{Config: m.gen.Config, Level: m.draft.Level}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
		b.WriteString("\n")
		b.WriteString(box.Render(preview.Render(max(m.width-2, 10), previewHeight, theme)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HUDControls.Render(m.help.View(m.keys)))
	return b.String()
}

// Run shows the progress screen until generation finishes and returns the
// generated level. Quitting early returns ErrInterrupted.
func Run(ctx context.Context, g *levelgen.Generator, f song.Features, seed int64, opts Options) (*level.Level, error) {
	model := NewProgressModel(ctx, g, f, seed, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	m, ok := finalModel.(ProgressModel)
	if !ok || !m.Done() {
		return nil, ErrInterrupted
	}
	return m.Result()
}
