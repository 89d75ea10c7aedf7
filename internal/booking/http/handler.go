package http

import (
	"net/http"
	"strings"

	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/booking"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/response"
	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	"github.com/fairwaylabs/teetime-backend/internal/user"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     booking.Service
	userService user.Service
}

func NewHandler(service booking.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

// checkIsSysAdmin helper checks if the current user is a system admin.
func (h *Handler) checkIsSysAdmin(c *gin.Context, userID string) bool {
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsSystemAdmin
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:    auth.GetUserID(c),
		CourseID:  body.CourseID,
		Date:      body.Date,
		Time:      body.Time,
		Players:   body.Players,
		Holes:     body.Holes,
		PromoCode: body.PromoCode,
		Quote:     body.Quote.ToSubmission(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if b.UserID != userID && !h.checkIsSysAdmin(c, userID) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	filter := booking.Filter{
		CourseID:  req.CourseID,
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: strings.ToUpper(req.SortOrder),
	}
	if req.DateFrom != "" {
		d, _ := pricing.ParseDate(req.DateFrom)
		filter.DateFrom = &d
	}
	if req.DateTo != "" {
		d, _ := pricing.ParseDate(req.DateTo)
		filter.DateTo = &d
	}

	// Non-admins only ever see their own bookings.
	userID := auth.GetUserID(c)
	if !h.checkIsSysAdmin(c, userID) {
		filter.UserID = userID
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Cancel(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	b, err := h.service.Cancel(c.Request.Context(), req.ID, userID, h.checkIsSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Confirm is the admin/payment-flow hook that marks a pending booking paid.
func (h *Handler) Confirm(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}
