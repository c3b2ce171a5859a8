package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/application/library"
)

// collectionFileRequest names the file a collection operation acts on
type collectionFileRequest struct {
	FileID uuid.UUID `json:"file_id" binding:"required"`
}

// CollectionHandler handles the authenticated user's collection endpoints
type CollectionHandler struct {
	BaseHandler
	collectionService *library.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService *library.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// List returns summaries of the user's collections
func (h *CollectionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	collections, err := h.collectionService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collections)
}

// Create makes a new empty collection owned by the user
func (h *CollectionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req library.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	collection, err := h.collectionService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, collection)
}

// Get returns one collection with its files resolved, owner only
func (h *CollectionHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	collectionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	collection, err := h.collectionService.Get(c.Request.Context(), userID, collectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Delete removes a collection the user owns
func (h *CollectionHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	collectionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.collectionService.Delete(c.Request.Context(), userID, collectionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddFile adds a file to a collection the user owns. Re-adding a member
// is a no-op.
func (h *CollectionHandler) AddFile(c *gin.Context) {
	h.memberOp(c, h.collectionService.AddFile)
}

// RemoveFile drops a file from a collection the user owns
func (h *CollectionHandler) RemoveFile(c *gin.Context) {
	h.memberOp(c, h.collectionService.RemoveFile)
}

func (h *CollectionHandler) memberOp(c *gin.Context, op func(ctx context.Context, userID, collectionID, fileID uuid.UUID) error) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	collectionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req collectionFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := op(c.Request.Context(), userID, collectionID, req.FileID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
