package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/studyhub/backend/internal/application/catalog"
)

// BranchHandler handles branch management endpoints
type BranchHandler struct {
	BaseHandler
	branchService *catalog.BranchService
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *catalog.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// List returns all branches ordered by name
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branchService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branches)
}

// Get returns a single branch by slug or ID
func (h *BranchHandler) Get(c *gin.Context) {
	branch, err := h.branchService.Get(c.Request.Context(), c.Param("branch"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// Create registers a new branch
func (h *BranchHandler) Create(c *gin.Context) {
	var req catalog.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	branch, err := h.branchService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, branch)
}

// Update modifies an existing branch
func (h *BranchHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	branch, err := h.branchService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// Delete removes a branch that no subject references
func (h *BranchHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.branchService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
