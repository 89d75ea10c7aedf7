package http

import (
	"io"
	"net/http"

	"github.com/fairwaylabs/teetime-backend/internal/course"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// maxPhotoBytes caps course photo uploads at 8 MiB.
const maxPhotoBytes = 8 << 20

type Handler struct {
	service course.Service
}

func NewHandler(service course.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := course.Filter{
		City:       req.City,
		Keyword:    req.Keyword,
		ActiveOnly: true, // public listing shows bookable courses only
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	courses, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CourseResponse, len(courses))
	for i, co := range courses {
		items[i] = NewCourseResponse(co)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	co, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCourseResponse(co))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateCourseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	co, err := h.service.Create(c.Request.Context(), course.CreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Address:     body.Address,
		City:        body.City,
		Holes:       body.Holes,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Active:      body.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewCourseResponse(co))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body UpdateCourseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	co, err := h.service.Update(c.Request.Context(), uri.ID, course.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Address:     body.Address,
		City:        body.City,
		Holes:       body.Holes,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Active:      body.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCourseResponse(co))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadPhoto accepts a multipart "photo" file and stores it with a
// generated thumbnail.
func (h *Handler) UploadPhoto(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer f.Close()

	co, err := h.service.SetPhoto(c.Request.Context(), uri.ID, f)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCourseResponse(co))
}

// Photo streams the stored course photo (or its thumbnail with ?thumb=1).
func (h *Handler) Photo(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	thumb := c.Query("thumb") == "1"

	rc, err := h.service.GetPhoto(c.Request.Context(), uri.ID, thumb)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
