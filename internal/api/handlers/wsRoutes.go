package handlers

import (
	"net/http"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/ws"
)

// ChatWebSocket upgrades to the STOMP broker. Anyone may connect and subscribe;
// sending requires a valid access token.
func ChatWebSocket(hub *ws.Hub) http.HandlerFunc {
	return hub.ServeWS
}
