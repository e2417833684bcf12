package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-editor/internal/crop"
	"github.com/phambaophuc/image-editor/internal/editor"
	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/phambaophuc/image-editor/internal/models"
	"github.com/phambaophuc/image-editor/internal/services/processor"
	"github.com/phambaophuc/image-editor/internal/services/session"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

type upload struct {
	name        string
	contentType string
	data        []byte
}

var errNoFile = errors.New("No image file provided")

// readUpload checks the declared type and size from the multipart header
// before reading the file, so oversized uploads are never buffered whole.
func (h *EditorHandler) readUpload(c *gin.Context) (*upload, error) {
	file, header, err := c.Request.FormFile(imageParamKey)
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	maxSize := processor.UploadLimit(h.config.Storage.MaxFileSize)
	if err := processor.ValidateHeader(contentType, header.Size, maxSize); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &upload{name: header.Filename, contentType: contentType, data: data}, nil
}

func (h *EditorHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return false
	}
	return true
}

func (h *EditorHandler) editorFrom(c *gin.Context) (*editor.Editor, bool) {
	e, err := h.manager.Get(c.Param(editorIDParam))
	if err != nil {
		h.respondErr(c, err)
		return nil, false
	}
	return e, true
}

func toRect(r models.CropRect) geometry.Rect {
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func toPointerEvent(req models.PointerEvent) (editor.PointerEvent, error) {
	target, err := crop.ParseTarget(req.Target)
	if err != nil {
		return editor.PointerEvent{}, fmt.Errorf("%w: %v", editor.ErrInvalidPointer, err)
	}
	handle, err := geometry.ParseHandle(req.Handle)
	if err != nil {
		return editor.PointerEvent{}, fmt.Errorf("%w: %v", editor.ErrInvalidPointer, err)
	}
	ev := editor.PointerEvent{
		Kind:   editor.PointerKind(req.Type),
		X:      req.X,
		Y:      req.Y,
		Target: target,
		Handle: handle,
	}
	if req.Viewport != nil {
		ev.View = &editor.Viewport{
			OffsetX: req.Viewport.OffsetX,
			OffsetY: req.Viewport.OffsetY,
			Width:   req.Viewport.Width,
			Height:  req.Viewport.Height,
		}
	}
	return ev, nil
}

// === RESPONSE HANDLING ===

func (h *EditorHandler) respondData(c *gin.Context, status int, data any) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (h *EditorHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondErr maps an operation error to its status. Validation errors carry
// their own user-facing message; anything unexpected is logged and hidden.
func (h *EditorHandler) respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("editor_id", c.Param(editorIDParam)),
			zap.Error(err),
		)
		h.respondError(c, status, "Internal server error")
		return
	}
	h.respondError(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrEditorNotFound):
		return http.StatusNotFound
	case errors.Is(err, processor.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoImage), errors.Is(err, editor.ErrStaleLoad):
		return http.StatusConflict
	case errors.Is(err, errNoFile),
		errors.Is(err, processor.ErrUnsupportedType),
		errors.Is(err, processor.ErrFileTooLarge),
		errors.Is(err, session.ErrInvalidDimensions),
		errors.Is(err, session.ErrInvalidRect),
		errors.Is(err, session.ErrInvalidQuality),
		errors.Is(err, session.ErrEmptyFilename),
		errors.Is(err, editor.ErrInvalidPointer):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// === UTILITY METHODS ===

func (h *EditorHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
