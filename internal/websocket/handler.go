package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/storepulse/internal/tenant"
)

// HandleWebSocket upgrades the request and runs the connection as a hub
// client scoped to the caller's selected shop. The route sits behind the
// auth middleware; a connection without a shop selection is rejected
// because it could receive nothing useful.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := tenant.Resolve(r)
		if err != nil {
			http.Error(w, "No shop selected", http.StatusBadRequest)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		NewClient(hub, conn, shopID).Run(r.Context())
	}
}
