package handlers

import (
	"context"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/phambaophuc/image-editor/internal/editor"
	"github.com/phambaophuc/image-editor/internal/models"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	maxMsgSize = 16 * 1024
)

// StreamPointer upgrades to a websocket carrying pointer events. Each event
// is applied in arrival order and answered with the resulting crop update
// before the next one is read. Malformed JSON closes the stream.
func (h *EditorHandler) StreamPointer(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}

	origins := h.config.Server.AllowedOrigins
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns:     origins,
		InsecureSkipVerify: len(origins) == 0 || slices.Contains(origins, "*"),
	})
	if err != nil {
		h.logger.Warn("websocket accept", zap.String("editor_id", e.ID()), zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxMsgSize)

	h.logger.Debug("Pointer stream opened", zap.String("editor_id", e.ID()))
	if err := h.pumpPointer(c.Request.Context(), conn, e); err != nil {
		h.logger.Debug("Pointer stream closed", zap.String("editor_id", e.ID()), zap.Error(err))
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *EditorHandler) pumpPointer(ctx context.Context, conn *websocket.Conn, e *editor.Editor) error {
	for {
		var msg models.PointerEvent
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}

		reply := h.applyPointer(e, msg)
		if err := h.writeReply(ctx, conn, reply); err != nil {
			return err
		}
	}
}

func (h *EditorHandler) applyPointer(e *editor.Editor, msg models.PointerEvent) models.PointerReply {
	if err := binding.Validator.ValidateStruct(&msg); err != nil {
		return models.PointerReply{Error: err.Error()}
	}
	ev, err := toPointerEvent(msg)
	if err != nil {
		return models.PointerReply{Error: err.Error()}
	}
	update, handled, err := e.Pointer(ev)
	if err != nil {
		return models.PointerReply{Error: err.Error()}
	}
	return models.PointerReply{Handled: handled, Update: update}
}

func (h *EditorHandler) writeReply(ctx context.Context, conn *websocket.Conn, reply models.PointerReply) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, conn, reply)
}
