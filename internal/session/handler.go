package session

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yazelin/jaba-ai/internal/imaging"
)

// Handler exposes the session lifecycle over HTTP for the admin console.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// --------------------------------------------------
// Session lifecycle
// --------------------------------------------------

func (h *Handler) Open(c *gin.Context) {
	var req struct {
		GroupCode string `json:"group_code"`
	}
	// An empty body opens a flat-scoped session.
	_ = c.ShouldBindJSON(&req)

	sess, notices := h.manager.Open(req.GroupCode)
	c.JSON(http.StatusCreated, gin.H{
		"session": sess.View(),
		"notices": notices.Drain(),
	})
}

func (h *Handler) Get(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": sess.View(),
		"notices": notices.Drain(),
	})
}

func (h *Handler) Close(c *gin.Context) {
	h.manager.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Upload step
// --------------------------------------------------

func (h *Handler) UploadImage(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	// One extra byte so the session can tell "at the ceiling" from "over it".
	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	if err := sess.AttachImage(c.Request.Context(), data); err != nil {
		respondError(c, notices, err)
		return
	}
	respond(c, sess, notices)
}

func (h *Handler) ClearImage(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err := sess.ClearImage(); err != nil {
		respondError(c, notices, err)
		return
	}
	respond(c, sess, notices)
}

func (h *Handler) SelectTarget(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req struct {
		StoreID      string `json:"store_id"`
		NewStoreName string `json:"new_store_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.StoreID != "" && req.NewStoreName != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "choose an existing store or a new store name, not both"})
		return
	}

	target := ExistingStore(req.StoreID)
	if req.StoreID == "" {
		target = NewStore(req.NewStoreName)
	}

	if err := sess.SelectTarget(target); err != nil {
		respondError(c, notices, err)
		return
	}
	respond(c, sess, notices)
}

// --------------------------------------------------
// Recognize / save
// --------------------------------------------------

func (h *Handler) Recognize(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err := sess.Recognize(c.Request.Context()); err != nil {
		respondError(c, notices, err)
		return
	}
	respond(c, sess, notices)
}

func (h *Handler) Save(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var input SaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := sess.Save(c.Request.Context(), input); err != nil {
		respondError(c, notices, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved":   true,
		"notices": notices.Drain(),
	})
}

func (h *Handler) BackToUpload(c *gin.Context) {
	sess, notices, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err := sess.BackToUpload(); err != nil {
		respondError(c, notices, err)
		return
	}
	respond(c, sess, notices)
}

// --------------------------------------------------
// Store directory
// --------------------------------------------------

func (h *Handler) ListStores(c *gin.Context) {
	if h.manager.cfg.Directory == nil {
		c.JSON(http.StatusOK, gin.H{"stores": []StoreOption{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": h.manager.cfg.Directory.Editable()})
}

// EditExisting opens a session directly on a store's current menu.
func (h *Handler) EditExisting(c *gin.Context) {
	sess, notices := h.manager.Open(c.Query("group_code"))

	if err := sess.OpenExisting(c.Request.Context(), c.Param("id")); err != nil {
		h.manager.Close(sess.ID())
		respondError(c, notices, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session": sess.View(),
		"notices": notices.Drain(),
	})
}

// --------------------------------------------------

func respond(c *gin.Context, sess *Session, notices *NoticeBuffer) {
	c.JSON(http.StatusOK, gin.H{
		"session": sess.View(),
		"notices": notices.Drain(),
	})
}

func respondError(c *gin.Context, notices *NoticeBuffer, err error) {
	body := gin.H{"error": err.Error()}
	if notices != nil {
		body["notices"] = notices.Drain()
	}
	c.JSON(httpStatus(err), body)
}

func httpStatus(err error) int {
	var v *ValidationError
	if errors.As(err, &v) {
		return http.StatusBadRequest
	}
	if errors.Is(err, imaging.ErrImageLoad) {
		return http.StatusBadRequest
	}
	var r *RecognitionError
	if errors.As(err, &r) {
		return http.StatusBadGateway
	}
	var p *PersistenceError
	if errors.As(err, &p) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
