package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	events []string
}

func (r *recorder) OnEvent(e Event) {
	r.events = append(r.events, e.Kind.String()+":"+e.Title)
}

func TestList_RunsInOrder(t *testing.T) {
	var order []string
	step := func(name string) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	rec := &recorder{}
	l := New([]Task{
		{Title: "a", Run: step("a")},
		{Title: "b", Subtasks: []Task{
			{Title: "b1", Run: step("b1")},
			{Title: "b2", Run: step("b2")},
		}},
		{Title: "c", Run: step("c")},
	}, WithObserver(rec))

	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, []string{"a", "b1", "b2", "c"}, order)

	want := []string{
		"started:a", "done:a",
		"started:b", "started:b1", "done:b1", "started:b2", "done:b2", "done:b",
		"started:c", "done:c",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestList_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	ran := false

	rec := &recorder{}
	err := New([]Task{
		{Title: "Installing packages", Run: func(context.Context) error { return boom }},
		{Title: "Generating types", Run: func(context.Context) error { ran = true; return nil }},
	}, WithObserver(rec)).Run(context.Background())

	require.ErrorIs(t, err, boom)
	var te *Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, "Installing packages", te.Title)
	require.False(t, ran, "tasks after a failure must not run")
	require.Equal(t, []string{"started:Installing packages", "failed:Installing packages"}, rec.events)
}

func TestList_SubtaskErrorKeepsInnermostTitle(t *testing.T) {
	boom := errors.New("boom")
	err := New([]Task{
		{Title: "Creating Redwood app", Subtasks: []Task{
			{Title: "Copying template", Run: func(context.Context) error { return boom }},
		}},
	}).Run(context.Background())

	var te *Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, "Copying template", te.Title)
}

func TestList_EnabledAndSkip(t *testing.T) {
	ran := map[string]bool{}
	mark := func(name string) func(context.Context) error {
		return func(context.Context) error { ran[name] = true; return nil }
	}

	rec := &recorder{}
	err := New([]Task{
		{Title: "hidden", Enabled: func() bool { return false }, Run: mark("hidden")},
		{Title: "skipped", Skip: func() string { return "Skipped yarn install step" }, Run: mark("skipped")},
		{Title: "runs", Skip: func() string { return "" }, Run: mark("runs")},
	}, WithObserver(rec)).Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, map[string]bool{"runs": true}, ran)
	require.Equal(t, []string{"skipped:skipped", "started:runs", "done:runs"}, rec.events)
}

func TestList_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := New([]Task{{Title: "a", Run: func(context.Context) error { ran = true; return nil }}}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, ran)
}
