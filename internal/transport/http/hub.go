package http

import (
	"context"
	"sync"

	"darkstar-quiz-service/internal/domain"
	"darkstar-quiz-service/internal/render"
)

// Hub fans channel events out to every websocket connected to that channel.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan outboundMessage[any]]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan outboundMessage[any]]struct{})}
}

// Publish implements app.ResultsSink by broadcasting the report.
func (h *Hub) Publish(_ context.Context, report domain.ResultsReport) error {
	h.Deliver(report)
	return nil
}

// Deliver broadcasts a finished report to the report's channel.
func (h *Hub) Deliver(report domain.ResultsReport) {
	h.Broadcast(report.ChannelID, outboundMessage[any]{Type: "results", Payload: resultsPayload{
		Report:   report,
		Messages: render.Results(report),
	}})
}

func (h *Hub) subscribe(channelID string) (<-chan outboundMessage[any], func()) {
	ch := make(chan outboundMessage[any], 8)

	h.mu.Lock()
	subs, ok := h.subscribers[channelID]
	if !ok {
		subs = make(map[chan outboundMessage[any]]struct{})
		h.subscribers[channelID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[channelID]
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, channelID)
		}
	}
	return ch, cancel
}

// Broadcast sends msg to every subscriber of channelID. A slow subscriber
// loses its oldest pending message instead of blocking the others.
func (h *Hub) Broadcast(channelID string, msg outboundMessage[any]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[channelID] {
		select {
		case ch <- msg:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- msg
		}
	}
}

// Subscribers returns the number of connections on channelID.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[channelID])
}
