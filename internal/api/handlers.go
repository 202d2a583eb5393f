// Package api exposes the HTTP surface: document upload and management,
// grounded chat and conversation history.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"docintell/internal/errs"
	"docintell/internal/rag/pipeline"
	"docintell/internal/service"
	"docintell/pkg/logger"
)

// Handler bundles the endpoint handlers over the application service.
type Handler struct {
	log     *logger.Logger
	service *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(s *service.Service, log *logger.Logger) *Handler {
	return &Handler{log: log, service: s}
}

// respondError maps the error taxonomy onto HTTP statuses. Validation faults
// and missing resources are the caller's problem; everything else is a
// generic processing failure without internals leaking out.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// UploadDocument ingests a multipart file upload. The response carries the
// document in its terminal state, so a client can tell a failed extraction
// from a successful one without polling.
func (h *Handler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	doc, err := h.service.UploadDocument(c.Request.Context(), pipeline.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
		OwnerID:     ownerID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// ListDocuments returns the caller's documents, newest first.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.service.ListDocuments(c.Request.Context(), ownerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GetDocument returns one document with its chunks.
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.service.GetDocument(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes a document, its vectors and its archived bytes.
func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.service.DeleteDocument(c.Request.Context(), c.Param("id"), ownerID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChatRequest is one question, optionally continuing a conversation.
type ChatRequest struct {
	Question       string `json:"question" binding:"required"`
	ConversationID string `json:"conversation_id"`
}

// Chat answers a question grounded on the caller's indexed documents.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Ask(c.Request.Context(), ownerID(c), req.ConversationID, req.Question)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListConversations returns the caller's conversations, most recently
// active first.
func (h *Handler) ListConversations(c *gin.Context) {
	convs, err := h.service.ListConversations(c.Request.Context(), ownerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// GetConversation returns one conversation with its full message log.
func (h *Handler) GetConversation(c *gin.Context) {
	conv, err := h.service.GetConversation(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// DeleteConversation removes a conversation and its messages.
func (h *Handler) DeleteConversation(c *gin.Context) {
	if err := h.service.DeleteConversation(c.Request.Context(), c.Param("id"), ownerID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
