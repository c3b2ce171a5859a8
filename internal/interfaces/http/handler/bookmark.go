package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/studyhub/backend/internal/application/library"
)

// BookmarkHandler handles the authenticated user's bookmark endpoints
type BookmarkHandler struct {
	BaseHandler
	bookmarkService *library.BookmarkService
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(bookmarkService *library.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// List returns the user's bookmarked files in bookmark order
func (h *BookmarkHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookmarks, err := h.bookmarkService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bookmarks)
}

// Add bookmarks a file for the user. Adding an existing bookmark is a no-op.
func (h *BookmarkHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileID, ok := h.parseUUIDParam(c, "fileId")
	if !ok {
		return
	}

	if err := h.bookmarkService.Add(c.Request.Context(), userID, fileID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Remove drops a bookmark. Removing an absent bookmark is a no-op.
func (h *BookmarkHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileID, ok := h.parseUUIDParam(c, "fileId")
	if !ok {
		return
	}

	if err := h.bookmarkService.Remove(c.Request.Context(), userID, fileID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
