package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/v-gjy/redwood/internal/tasks"
)

// Plain writes one line per task transition. Used when stdout is not a
// terminal.
type Plain struct {
	out   io.Writer
	theme Theme
}

func NewPlain(out io.Writer, theme Theme) *Plain {
	return &Plain{out: out, theme: theme}
}

func (p *Plain) Run(ctx context.Context, work Work) error {
	return work(ctx, tasks.ObserverFunc(p.OnEvent))
}

func (p *Plain) OnEvent(ev tasks.Event) {
	indent := strings.Repeat("  ", ev.Depth)
	switch ev.Kind {
	case tasks.EventStarted:
		fmt.Fprintf(p.out, "%s%s %s\n", indent, p.theme.Running.Render("→"), ev.Title)
	case tasks.EventDone:
		fmt.Fprintf(p.out, "%s%s %s %s\n", indent, p.theme.Done.Render("✔"), ev.Title,
			p.theme.Help.Render("("+ev.Duration.Round(time.Millisecond).String()+")"))
	case tasks.EventFailed:
		fmt.Fprintf(p.out, "%s%s %s\n", indent, p.theme.Failed.Render("✖"), ev.Title)
	case tasks.EventSkipped:
		fmt.Fprintf(p.out, "%s%s %s %s\n", indent, p.theme.Skipped.Render("↓"), ev.Title,
			p.theme.Help.Render("["+ev.Reason+"]"))
	}
}

var (
	_ Renderer       = (*Plain)(nil)
	_ tasks.Observer = (*Plain)(nil)
)
