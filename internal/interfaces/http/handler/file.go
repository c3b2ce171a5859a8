package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	"github.com/studyhub/backend/internal/domain/catalog"
)

// FileHandler handles study material endpoints
type FileHandler struct {
	BaseHandler
	fileService *catalogapp.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *catalogapp.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// ListBySubject returns the subject's files with the static question
// paper index merged in: a flat list sorted by relative path, or bucketed
// by folder when grouped=true. The subject is named by subjectSlug or
// subjectId.
func (h *FileHandler) ListBySubject(c *gin.Context) {
	slugOrID := c.Query("subjectSlug")
	if slugOrID == "" {
		slugOrID = c.Query("subjectId")
	}
	if slugOrID == "" {
		h.BadRequest(c, "One of subjectSlug or subjectId is required")
		return
	}
	grouped, _ := strconv.ParseBool(c.Query("grouped"))

	files, err := h.fileService.GetSubjectFiles(c.Request.Context(), slugOrID, grouped)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, files)
}

// Get returns a single file by slug
func (h *FileHandler) Get(c *gin.Context) {
	file, err := h.fileService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Like increments the like counter of a file
func (h *FileHandler) Like(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Like(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Unlike decrements the like counter of a file, never below zero
func (h *FileHandler) Unlike(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Unlike(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Search performs a file name search, optionally scoped to a branch or
// subject. A blank query returns an empty result set.
func (h *FileHandler) Search(c *gin.Context) {
	filter := catalog.SearchFilter{
		Query:       strings.TrimSpace(c.Query("q")),
		BranchSlug:  c.Query("branch"),
		SubjectSlug: c.Query("subject"),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			h.BadRequest(c, "Invalid limit format")
			return
		}
		filter.Limit = limit
	}

	results, err := h.fileService.Search(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// Create registers a file that already lives at an external URL
func (h *FileHandler) Create(c *gin.Context) {
	var req catalogapp.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	file, err := h.fileService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, file)
}

// Update modifies the metadata of an existing file
func (h *FileHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	file, err := h.fileService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Delete removes a file, deleting the stored object when one exists
func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// InitiateUpload creates a pending file record and returns a presigned
// PUT URL for the browser to upload against
func (h *FileHandler) InitiateUpload(c *gin.Context) {
	var req catalogapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.fileService.InitiateUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmUpload verifies the object landed in storage and activates the
// pending file record
func (h *FileHandler) ConfirmUpload(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	file, err := h.fileService.ConfirmUpload(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}
