package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// busMsg wraps a message delivered through the event bus so the app knows
// to re-arm the listener after handling it.
type busMsg struct {
	msg tea.Msg
}

// eventBus carries messages from background goroutines (command output,
// update progress, log lines, document changes) into the program loop.
// Exactly one wait command is pending at any time.
type eventBus struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

func newEventBus(size int) *eventBus {
	return &eventBus{
		ch:   make(chan tea.Msg, size),
		done: make(chan struct{}),
	}
}

// send delivers msg, blocking while the buffer is full. It returns
// immediately once the bus is closed.
func (b *eventBus) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// trySend delivers msg unless the buffer is full.
func (b *eventBus) trySend(msg tea.Msg) bool {
	select {
	case b.ch <- msg:
		return true
	default:
		return false
	}
}

// wait returns a command that yields the next message.
func (b *eventBus) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return busMsg{msg: msg}
		case <-b.done:
			return nil
		}
	}
}

func (b *eventBus) close() {
	b.once.Do(func() { close(b.done) })
}
