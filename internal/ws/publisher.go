package ws

import "github.com/sirupsen/logrus"

// DomainsChanged broadcasts a domains:update event. Clients refetch the
// listing on receipt; the event id lets them spot missed updates.
func (h *Hub) DomainsChanged(eventType, domain string) {
	id := h.eventID.Add(1)
	h.out.BroadcastToNamespace("/", EventDomainsUpdate, map[string]interface{}{
		"eventId": id,
		"type":    eventType,
		"domain":  domain,
	})

	h.logger.WithFields(logrus.Fields{
		"eventId": id,
		"type":    eventType,
		"domain":  domain,
	}).Debug("event broadcasted")
}
