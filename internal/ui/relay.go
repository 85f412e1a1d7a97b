package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Relay hands messages from the session's controlling context to a send that may
// block, such as [tea.Program.Send]. The program dispatches transport commands back
// onto that context, so the two must never wait on each other.
//
// Messages keep their order. Consecutive progress ticks collapse into the latest one.
type Relay struct {
	send    func(tea.Msg)
	mu      sync.Mutex
	pending []tea.Msg
	wake    chan struct{}
}

// NewRelay creates a relay delivering to send; call [Relay.Run] to start it.
func NewRelay(send func(tea.Msg)) *Relay {
	return &Relay{send: send, wake: make(chan struct{}, 1)}
}

// Send queues msg and returns immediately.
func (r *Relay) Send(msg tea.Msg) {
	r.mu.Lock()
	if n := len(r.pending); n > 0 && isProgress(r.pending[n-1]) && isProgress(msg) {
		r.pending[n-1] = msg
	} else {
		r.pending = append(r.pending, msg)
	}
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run delivers queued messages until ctx ends.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		}

		r.mu.Lock()
		batch := r.pending
		r.pending = nil
		r.mu.Unlock()

		for _, msg := range batch {
			if ctx.Err() != nil {
				return
			}
			r.send(msg)
		}
	}
}

func isProgress(msg tea.Msg) bool {
	m, ok := msg.(Msg)
	return ok && m.kind == MsgProgress
}
