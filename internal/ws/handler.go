package ws

import (
	"context"
	"time"

	socketio "github.com/googollee/go-socket.io"
)

const listTimeout = 30 * time.Second

// handleRequestDomains answers request:domains with the full listing
func (h *Hub) handleRequestDomains(s socketio.Conn, _ interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()

	payload, err := h.listPayload(ctx)
	if err != nil {
		h.logger.WithField("conn", s.ID()).WithError(err).Error("failed to list domains")
		s.Emit(EventError, map[string]interface{}{
			"message": "Failed to list domains",
		})
		return
	}

	s.Emit(EventDomainsList, payload)
}

func (h *Hub) listPayload(ctx context.Context) (map[string]interface{}, error) {
	records, err := h.lister.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"items":       records,
		"total":       len(records),
		"lastEventId": h.eventID.Load(),
	}, nil
}
