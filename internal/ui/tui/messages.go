package tui

import "github.com/v-gjy/redwood/internal/tasks"

type taskEventMsg struct {
	ev tasks.Event
}

type workDoneMsg struct {
	err error
}
