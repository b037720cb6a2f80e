package realtime

import "encoding/json"

// SendToUser delivers an event to every live connection of the target
// user. The payload is serialized once; each connection either gets the
// whole payload queued or is pruned on write failure, with delivery to
// the user's other connections unaffected. An offline target means the
// event is dropped without error — the REST surface is the source of
// truth and the client's next poll catches it up.
func (h *Hub) SendToUser(userID string, evt Envelope) {
	conns := h.registry.Connections(userID)
	if len(conns) == 0 {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("marshal event", "type", evt.Type, "err", err)
		return
	}
	for _, c := range conns {
		if !c.trySend(payload) {
			h.detach(c)
		}
	}
}

// BroadcastOnlineUsers sends the full roster to every tracked
// connection — anonymous ones included — so all clients converge on the
// same membership view after any presence change.
func (h *Hub) BroadcastOnlineUsers() {
	payload, err := json.Marshal(Envelope{Type: TypeOnlineUsers, UserIDs: h.registry.ListOnline()})
	if err != nil {
		h.logger.Error("marshal roster", "err", err)
		return
	}
	for _, c := range h.registry.All() {
		if !c.trySend(payload) {
			h.detach(c)
		}
	}
}
