package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/v-gjy/redwood/internal/tasks"
)

// Work is the body a renderer drives. It reports progress through obs.
type Work func(ctx context.Context, obs tasks.Observer) error

// Renderer shows task progress while work runs.
type Renderer interface {
	Run(ctx context.Context, work Work) error
}

type rowState int

const (
	rowRunning rowState = iota
	rowDone
	rowFailed
	rowSkipped
)

type row struct {
	title  string
	depth  int
	state  rowState
	reason string
}

type model struct {
	theme    Theme
	spin     spinner.Model
	rows     []row
	finished bool
	width    int
}

func newModel(theme Theme) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Running
	return model{theme: theme, spin: sp}
}

func (m model) Init() tea.Cmd { return m.spin.Tick }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case taskEventMsg:
		m.rows = apply(m.rows, msg.ev)
		return m, nil

	case workDoneMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	for _, r := range m.rows {
		icon := m.icon(r)
		line := strings.Repeat("  ", r.depth) + icon + " " + r.title
		if r.state == rowSkipped && r.reason != "" {
			line += " " + m.theme.Help.Render("["+r.reason+"]")
		}
		if m.width > 0 {
			line = clampString(line, m.width+ansiSlack(line))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) icon(r row) string {
	switch r.state {
	case rowDone:
		return m.theme.Done.Render("✔")
	case rowFailed:
		return m.theme.Failed.Render("✖")
	case rowSkipped:
		return m.theme.Skipped.Render("↓")
	default:
		if m.finished {
			return m.theme.Help.Render("◼")
		}
		return m.spin.View()
	}
}

// apply folds one event into the row list. Started and Skipped append a row;
// Done and Failed settle the most recent running row with the same title.
func apply(rows []row, ev tasks.Event) []row {
	switch ev.Kind {
	case tasks.EventStarted:
		return append(rows, row{title: ev.Title, depth: ev.Depth, state: rowRunning})
	case tasks.EventSkipped:
		return append(rows, row{title: ev.Title, depth: ev.Depth, state: rowSkipped, reason: ev.Reason})
	case tasks.EventDone, tasks.EventFailed:
		for i := len(rows) - 1; i >= 0; i-- {
			if rows[i].title == ev.Title && rows[i].depth == ev.Depth && rows[i].state == rowRunning {
				if ev.Kind == tasks.EventDone {
					rows[i].state = rowDone
				} else {
					rows[i].state = rowFailed
				}
				break
			}
		}
	}
	return rows
}

// Interactive renders a spinner list with bubbletea.
type Interactive struct {
	out   io.Writer
	log   *slog.Logger
	theme Theme
}

func NewInteractive(out io.Writer, log *slog.Logger) *Interactive {
	return &Interactive{out: out, log: log, theme: DefaultTheme()}
}

// Run starts the program, runs work on its own goroutine and returns the
// work's error once the final frame is drawn.
func (r *Interactive) Run(ctx context.Context, work Work) error {
	p := tea.NewProgram(
		wrapSafe(newModel(r.theme), r.log),
		tea.WithOutput(r.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	var workErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		workErr = work(ctx, tasks.ObserverFunc(func(ev tasks.Event) {
			p.Send(taskEventMsg{ev: ev})
		}))
		p.Send(workDoneMsg{err: workErr})
	}()

	_, runErr := p.Run()
	if runErr != nil {
		// Unblocks any pending Send so the work goroutine can finish.
		p.Kill()
	}
	<-done

	if workErr != nil {
		return workErr
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}

var _ Renderer = (*Interactive)(nil)
