package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/dfryer1193/folio/api"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	previewWriteWait   = 10 * time.Second
	previewReadLimit   = 1 << 20
	previewIdleTimeout = 10 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// the admin token is checked before the upgrade
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PreviewSocket renders every text message received on the socket and answers with
// the preview as JSON.
func (a *Api) PreviewSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade preview socket")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(previewReadLimit)
	ctx := c.Request.Context()

	for {
		if ctx.Err() != nil {
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(previewIdleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				log.Debug().Err(err).Msg("Preview socket closed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply any
		preview, err := a.renderer.Render(string(data))
		if err != nil {
			reply = api.ErrorResponse{Error: err.Error()}
		} else {
			reply = preview
		}

		_ = conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn().Err(err).Msg("Failed to write preview")
			return
		}
	}
}
