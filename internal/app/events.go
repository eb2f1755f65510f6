package app

import (
	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/stream"
	"github.com/mselser95/hoops-edge/pkg/types"
)

// Stream message types beyond the ledger's own event types.
const MessageSlateAnalyzed = "slate.analyzed"

// fanout delivers each ledger event to every publisher in order.
type fanout []ledger.EventPublisher

func (f fanout) Publish(evt ledger.Event) {
	for _, p := range f {
		p.Publish(evt)
	}
}

// streamPublisher forwards ledger events to websocket subscribers.
type streamPublisher struct {
	hub *stream.Hub
}

func (s streamPublisher) Publish(evt ledger.Event) {
	s.hub.Broadcast(stream.Message{
		Type:      string(evt.Type),
		Payload:   evt,
		Timestamp: evt.At,
	})
}

func (a *App) publishers() ledger.EventPublisher {
	pubs := fanout{streamPublisher{hub: a.hub}}
	if a.notifier != nil {
		pubs = append(pubs, a.notifier)
	}
	return pubs
}

func (a *App) broadcastSlate(s *types.DailySlate) {
	a.hub.Broadcast(stream.Message{
		Type:      MessageSlateAnalyzed,
		Payload:   s,
		Timestamp: s.GeneratedAt,
	})
}
