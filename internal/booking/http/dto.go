package http

import (
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/booking"
	courseHttp "github.com/fairwaylabs/teetime-backend/internal/course/http"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	quoteHttp "github.com/fairwaylabs/teetime-backend/internal/quote/http"
)

// CreateBookingBody reserves a tee time. The quote block is the unmodified
// signed quote from POST /quotes.
type CreateBookingBody struct {
	CourseID  string                      `json:"course_id" binding:"required,uuid"`
	Date      string                      `json:"date" binding:"required"`
	Time      string                      `json:"time" binding:"required"`
	Players   int                         `json:"players" binding:"required,min=1,max=4"`
	Holes     int                         `json:"holes" binding:"required,oneof=9 18 27"`
	PromoCode *string                     `json:"promo_code"`
	Quote     quoteHttp.VerifyRequestBody `json:"quote" binding:"required"`
}

// Validate performs custom validation for CreateBookingBody.
func (r *CreateBookingBody) Validate() error {
	if _, err := pricing.ParseDate(r.Date); err != nil {
		return pricing.ErrInvalidDate
	}
	if _, err := pricing.ParseClock(r.Time); err != nil {
		return pricing.ErrInvalidTime
	}
	return nil
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	CourseID  string `form:"course_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=tee_date created_at status"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.DateFrom != "" {
		if _, err := pricing.ParseDate(r.DateFrom); err != nil {
			return pricing.ErrInvalidDate
		}
	}
	if r.DateTo != "" {
		if _, err := pricing.ParseDate(r.DateTo); err != nil {
			return pricing.ErrInvalidDate
		}
	}
	return nil
}

type BookingResponse struct {
	ID         string               `json:"id"`
	Course     courseHttp.CourseTag `json:"course"`
	UserID     string               `json:"user_id"`
	UserName   string               `json:"user_name,omitempty"`
	Date       string               `json:"date"`
	Time       string               `json:"time"`
	Players    int                  `json:"players"`
	Holes      int                  `json:"holes"`
	Status     string               `json:"status"`
	TotalCents int64                `json:"total_cents"`
	Currency   string               `json:"currency"`
	PromoCode  *string              `json:"promo_code,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID,
		Course: courseHttp.CourseTag{
			ID:   b.CourseID,
			Name: b.CourseName,
		},
		UserID:     b.UserID,
		UserName:   b.UserName,
		Date:       b.TeeDate.Format("2006-01-02"),
		Time:       pricing.FormatClock(b.TeeMinute),
		Players:    b.Players,
		Holes:      b.Holes,
		Status:     string(b.Status),
		TotalCents: b.TotalCents,
		Currency:   b.Currency,
		PromoCode:  b.PromoCode,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
