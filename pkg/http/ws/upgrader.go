package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader handles WebSocket upgrades. The quiz runs on a shared screen, so
// spectators connect from arbitrary origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}
