package notify

import (
	"sync"

	"rmoflow/pkg/events"
)

// Sink receives every toast posted to a Hub.
type Sink interface {
	Toast(events.ToastMsg)
}

// Hub fans toasts out to registered sinks. Safe for concurrent use.
type Hub struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewHub(sinks ...Sink) *Hub {
	return &Hub{sinks: sinks}
}

func (h *Hub) Register(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

func (h *Hub) post(level events.ToastLevel, text string) {
	h.mu.Lock()
	sinks := append([]Sink(nil), h.sinks...)
	h.mu.Unlock()
	msg := events.ToastMsg{Level: level, Text: text}
	for _, s := range sinks {
		s.Toast(msg)
	}
}

// Info posts a neutral notice.
func (h *Hub) Info(text string) { h.post(events.ToastInfo, text) }

// Success posts a confirmation, shown green.
func (h *Hub) Success(text string) { h.post(events.ToastSuccess, text) }

// Error posts a failure, shown red. The toast carries a user-facing
// message; the underlying error goes to the log, not the toast.
func (h *Hub) Error(text string) { h.post(events.ToastError, text) }
