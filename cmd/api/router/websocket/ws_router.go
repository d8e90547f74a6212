package websocket

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"ytgify.com/cmd/api/handlers/stream"
)

func WebsocketRegister(h *server.Hertz) {
	register(h)
}

func register(h *server.Hertz) {
	h.GET(`/ws`, append(_wsAuth(), stream.Handler)...)
}
