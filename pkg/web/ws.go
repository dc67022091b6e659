package web

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/fevtel/evdash-service-go/log"
)

// wsHandler streams the hub's frames to one websocket client. Clients
// that stop reading are skipped by the broadcast server and dropped here
// on the first failed write.
func (s *Server) wsHandler(h *hub) http.Handler {
	return websocket.Handler(func(ws *websocket.Conn) {
		clientID := uuid.NewString()
		h.l.Debug("client connected", log.String("client", clientID))

		sub := h.bcst.Subscribe()
		// greet with the latest frame so panels paint without waiting a tick
		if data := h.Latest(); data != nil {
			if err := websocket.Message.Send(ws, string(data)); err != nil {
				h.bcst.CancelSubscription(sub)
				return
			}
		}
		for data := range sub {
			if err := websocket.Message.Send(ws, string(data)); err != nil {
				h.l.Debug("client dropped",
					log.String("client", clientID),
					log.ErrorField(err))
				h.bcst.CancelSubscription(sub)
				return
			}
		}
		// sub was closed by hub shutdown, nothing left to cancel
	})
}
