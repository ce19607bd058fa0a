// Package tasks runs an ordered list of titled steps and reports progress to
// an observer. The first failing step aborts the rest.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/v-gjy/redwood/internal/ctxlog"
)

// Task is one titled step. Run and Subtasks may both be set; Run goes first.
type Task struct {
	Title string

	// Enabled hides the task entirely when it returns false.
	Enabled func() bool

	// Skip marks the task as skipped with the returned reason when non-empty.
	Skip func() string

	Run      func(ctx context.Context) error
	Subtasks []Task
}

// EventKind is the lifecycle stage of a task.
type EventKind int

const (
	EventStarted EventKind = iota
	EventSkipped
	EventDone
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventSkipped:
		return "skipped"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes a task transition. Depth is 0 for top-level tasks.
type Event struct {
	Kind     EventKind
	Title    string
	Depth    int
	Reason   string
	Err      error
	Duration time.Duration
}

// Observer receives task events in order, from the goroutine calling Run.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Error wraps the failure of a task with its title.
type Error struct {
	Title string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Title, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// List is an ordered task list.
type List struct {
	tasks []Task
	obs   Observer
}

type Option func(*List)

func WithObserver(o Observer) Option {
	return func(l *List) {
		if o != nil {
			l.obs = o
		}
	}
}

func New(tasks []Task, opts ...Option) *List {
	l := &List{
		tasks: tasks,
		obs:   ObserverFunc(func(Event) {}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes the tasks in order and stops at the first error.
func (l *List) Run(ctx context.Context) error {
	return l.run(ctx, l.tasks, 0)
}

func (l *List) run(ctx context.Context, tasks []Task, depth int) error {
	log := ctxlog.FromContext(ctx)

	for _, t := range tasks {
		if t.Enabled != nil && !t.Enabled() {
			log.Debug("task.disabled", "title", t.Title)
			continue
		}

		if t.Skip != nil {
			if reason := t.Skip(); reason != "" {
				log.Debug("task.skipped", "title", t.Title, "reason", reason)
				l.obs.OnEvent(Event{Kind: EventSkipped, Title: t.Title, Depth: depth, Reason: reason})
				continue
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		l.obs.OnEvent(Event{Kind: EventStarted, Title: t.Title, Depth: depth})
		log.Debug("task.start", "title", t.Title)

		err := l.runOne(ctx, t, depth)
		elapsed := time.Since(start)

		if err != nil {
			log.Debug("task.failed", "title", t.Title, "error", err)
			l.obs.OnEvent(Event{Kind: EventFailed, Title: t.Title, Depth: depth, Err: err, Duration: elapsed})
			var te *Error
			if asTaskError(err, &te) {
				return err
			}
			return &Error{Title: t.Title, Err: err}
		}

		log.Debug("task.done", "title", t.Title, "duration", elapsed)
		l.obs.OnEvent(Event{Kind: EventDone, Title: t.Title, Depth: depth, Duration: elapsed})
	}
	return nil
}

func (l *List) runOne(ctx context.Context, t Task, depth int) error {
	if t.Run != nil {
		if err := t.Run(ctx); err != nil {
			return err
		}
	}
	if len(t.Subtasks) > 0 {
		return l.run(ctx, t.Subtasks, depth+1)
	}
	return nil
}

// asTaskError reports whether err is already a subtask failure, so the
// innermost title is kept.
func asTaskError(err error, target **Error) bool {
	te, ok := err.(*Error)
	if ok {
		*target = te
	}
	return ok
}
