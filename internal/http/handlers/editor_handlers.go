package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-editor/internal/config"
	"github.com/phambaophuc/image-editor/internal/editor"
	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/phambaophuc/image-editor/internal/models"
	"github.com/phambaophuc/image-editor/internal/services/storage"
	"go.uber.org/zap"
)

const (
	imageParamKey = "image"
	editorIDParam = "id"
)

type EditorHandler struct {
	manager *editor.Manager
	storage *storage.StorageService
	logger  *zap.Logger
	config  *config.Config
}

func NewEditorHandler(
	manager *editor.Manager,
	storage *storage.StorageService,
	logger *zap.Logger,
	config *config.Config,
) *EditorHandler {
	return &EditorHandler{
		manager: manager,
		storage: storage,
		logger:  logger,
		config:  config,
	}
}

// === EDITOR LIFECYCLE ===

// CreateEditor uploads an image into a new editor. No editor survives a
// failed upload.
func (h *EditorHandler) CreateEditor(c *gin.Context) {
	upload, err := h.readUpload(c)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	e := h.manager.Create()
	if _, err := e.Load(c.Request.Context(), upload.name, upload.contentType, upload.data); err != nil {
		_ = h.manager.Delete(c.Request.Context(), e.ID())
		h.respondErr(c, err)
		return
	}

	h.respondData(c, http.StatusCreated, e.State())
}

func (h *EditorHandler) GetEditor(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	h.respondData(c, http.StatusOK, e.State())
}

// DeleteEditor is "return to upload": the session is gone afterwards.
func (h *EditorHandler) DeleteEditor(c *gin.Context) {
	if err := h.manager.Delete(c.Request.Context(), c.Param(editorIDParam)); err != nil {
		h.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceImage loads a new upload into an existing editor.
func (h *EditorHandler) ReplaceImage(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	upload, err := h.readUpload(c)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if _, err := e.Load(c.Request.Context(), upload.name, upload.contentType, upload.data); err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, e.State())
}

// === RESIZE ===

func (h *EditorHandler) Resize(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.ResizeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := e.Resize(c.Request.Context(), geometry.Dimensions{Width: req.Width, Height: req.Height}); err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, e.State())
}

func (h *EditorHandler) EditResizePanel(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.ResizePanelRequest
	if !h.bind(c, &req) {
		return
	}
	panel := e.EditResizePanel(editor.ResizePanelEdit{
		Width:          req.Width,
		Height:         req.Height,
		Scale:          req.Scale,
		MaintainAspect: req.MaintainAspectRatio,
	})
	h.respondData(c, http.StatusOK, panel)
}

func (h *EditorHandler) ApplyResizePanel(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	if _, err := e.ApplyResizePanel(c.Request.Context()); err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, e.State())
}

// === CROP ===

func (h *EditorHandler) SetCropMode(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.CropModeRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	h.respondData(c, http.StatusOK, e.SetCropMode(req.Enabled))
}

func (h *EditorHandler) SetCropRect(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.CropRect
	if !h.bind(c, &req) {
		return
	}
	update, err := e.SetCropRect(toRect(req))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, update)
}

func (h *EditorHandler) Pointer(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.PointerEvent
	if !h.bind(c, &req) {
		return
	}
	ev, err := toPointerEvent(req)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	update, handled, err := e.Pointer(ev)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, models.PointerReply{Handled: handled, Update: update})
}

func (h *EditorHandler) SuggestCrop(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.SuggestCropRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	aspect := geometry.Dimensions{Width: req.AspectWidth, Height: req.AspectHeight}
	update, err := e.SuggestCrop(c.Request.Context(), aspect)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, update)
}

func (h *EditorHandler) ApplyCrop(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.CropApplyRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	var rect *geometry.Rect
	if req.Rect != nil {
		r := toRect(*req.Rect)
		rect = &r
	}
	if _, err := e.Crop(c.Request.Context(), rect); err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, e.State())
}

func (h *EditorHandler) Reset(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	if err := e.Reset(c.Request.Context()); err != nil {
		h.respondErr(c, err)
		return
	}
	h.respondData(c, http.StatusOK, e.State())
}

// === OUTPUT ===

func (h *EditorHandler) Preview(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	data, err := e.Preview()
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

// Export downloads the current raster as {filename}.jpg.
func (h *EditorHandler) Export(c *gin.Context) {
	e, ok := h.editorFrom(c)
	if !ok {
		return
	}
	var req models.ExportRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	out, err := e.Export(c.Request.Context(), req.Filename, req.Quality)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Header("Content-Length", fmt.Sprint(len(out.Data)))
	c.Data(http.StatusOK, out.MimeType, out.Data)
}

// === HEALTH ===

func (h *EditorHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{"export_cache": "not configured"}
	if h.storage != nil {
		services = h.storage.HealthCheck(c.Request.Context())
	}

	c.JSON(http.StatusOK, models.HealthCheck{
		Status:    h.calculateOverallHealth(services),
		Timestamp: time.Now(),
		Editors:   h.manager.Len(),
		Services:  services,
	})
}
