package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	"github.com/studyhub/backend/internal/domain/catalog"
)

// SubjectHandler handles subject management endpoints
type SubjectHandler struct {
	BaseHandler
	subjectService *catalogapp.SubjectService
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(subjectService *catalogapp.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// List returns subjects scoped by query parameters. Exactly one of
// branchId, branchSlug or global=true must be supplied.
func (h *SubjectHandler) List(c *gin.Context) {
	selector, ok := h.selectorFromQuery(c)
	if !ok {
		return
	}

	subjects, err := h.subjectService.ListBySelector(c.Request.Context(), selector)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subjects)
}

// ListByBranch returns the subjects attached to the branch in the path.
// Global subjects are a separate listing (?global=true); they are not
// folded in here.
func (h *SubjectHandler) ListByBranch(c *gin.Context) {
	subjects, err := h.subjectService.ListBySelector(c.Request.Context(), catalog.ByBranchSlug(c.Param("branch")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subjects)
}

// Get returns a single subject by slug or ID
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.subjectService.Get(c.Request.Context(), c.Param("subject"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subject)
}

// Create registers a new subject
func (h *SubjectHandler) Create(c *gin.Context) {
	var req catalogapp.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, subject)
}

// Update modifies an existing subject
func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subject)
}

// Delete removes a subject and its files
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *SubjectHandler) selectorFromQuery(c *gin.Context) (catalog.SubjectSelector, bool) {
	if idStr := c.Query("branchId"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			h.BadRequest(c, "Invalid branchId format")
			return catalog.SubjectSelector{}, false
		}
		return catalog.ByBranchID(id), true
	}
	if slug := c.Query("branchSlug"); slug != "" {
		return catalog.ByBranchSlug(slug), true
	}
	if c.Query("global") == "true" {
		return catalog.GlobalSubjects(), true
	}
	h.BadRequest(c, "One of branchId, branchSlug or global=true is required")
	return catalog.SubjectSelector{}, false
}
