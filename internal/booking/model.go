package booking

import (
	"net/http"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrSlotFull         = apperror.New(http.StatusConflict, "tee time is fully booked")
	ErrCourseNotFound   = apperror.New(http.StatusNotFound, "course not found")
	ErrCourseInactive   = apperror.New(http.StatusConflict, "course is not accepting bookings")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrTeeTimePast      = apperror.New(http.StatusBadRequest, "cannot book a tee time in the past")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid booking status")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// slotCapacity is the maximum number of players sharing one tee time.
const slotCapacity = 4

// Booking is a reserved tee time. TotalCents and QuoteHash are the immutable
// copy of the verified quote this booking was paid against.
type Booking struct {
	ID         string
	CourseID   string
	CourseName string
	UserID     string
	UserName   string
	TeeDate    time.Time
	TeeMinute  int
	Players    int
	Holes      int
	Status     Status
	TotalCents int64
	Currency   string
	QuoteHash  string
	PromoCode  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID    string
	CourseID  string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
