package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/response"
)

type directoryService[T any] interface {
	Kind() string
	List(ctx context.Context, search string) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Register(ctx context.Context, record *T) (*T, error)
	Update(ctx context.Context, id string, patch []byte) (*T, error)
	Delete(ctx context.Context, id string) error
}

// DirectoryHandler serves the raw-document CRUD for one directory kind (students, teachers or
// admins). Errors are written as {"error": "..."}.
type DirectoryHandler[T any] struct {
	records directoryService[T]
}

// NewDirectoryHandler constructs DirectoryHandler.
func NewDirectoryHandler[T any](records directoryService[T]) *DirectoryHandler[T] {
	return &DirectoryHandler[T]{records: records}
}

// Register mounts the handler's routes under group, e.g. /api/students.
func (h *DirectoryHandler[T]) Register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("/register", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List directory records
// @Tags Directory
// @Produce json
// @Param kind path string true "students, teachers or admins"
// @Param search query string false "Name or email"
// @Success 200 {array} object
// @Router /api/{kind} [get]
func (h *DirectoryHandler[T]) List(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	if records == nil {
		records = []T{}
	}
	response.Document(c, http.StatusOK, records)
}

// Get godoc
// @Summary Get directory record
// @Tags Directory
// @Produce json
// @Param kind path string true "students, teachers or admins"
// @Param id path string true "Record ID"
// @Success 200 {object} object
// @Router /api/{kind}/{id} [get]
func (h *DirectoryHandler[T]) Get(c *gin.Context) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusOK, record)
}

// Create godoc
// @Summary Register directory record
// @Tags Directory
// @Accept json
// @Produce json
// @Param kind path string true "students, teachers or admins"
// @Success 201 {object} object
// @Router /api/{kind}/register [post]
func (h *DirectoryHandler[T]) Create(c *gin.Context) {
	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	created, err := h.records.Register(c.Request.Context(), &record)
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusCreated, created)
}

// Update godoc
// @Summary Update directory record
// @Description Fields present in the body replace the stored ones.
// @Tags Directory
// @Accept json
// @Produce json
// @Param kind path string true "students, teachers or admins"
// @Param id path string true "Record ID"
// @Success 200 {object} object
// @Router /api/{kind}/{id} [put]
func (h *DirectoryHandler[T]) Update(c *gin.Context) {
	patch, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	updated, err := h.records.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete directory record
// @Tags Directory
// @Produce json
// @Param kind path string true "students, teachers or admins"
// @Param id path string true "Record ID"
// @Success 200 {object} object
// @Router /api/{kind}/{id} [delete]
func (h *DirectoryHandler[T]) Delete(c *gin.Context) {
	if err := h.records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusOK, gin.H{"message": "Deleted successfully"})
}
