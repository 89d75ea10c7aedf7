package course

import (
	"net/http"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "course not found")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "name is required")
	ErrInvalidHoles = apperror.New(http.StatusBadRequest, "holes must be 9, 18 or 27")
	ErrNoPhoto      = apperror.New(http.StatusNotFound, "course has no photo")
)

// Course is one bookable golf course listing.
type Course struct {
	ID          string
	Name        string
	Description string
	Address     string
	City        string
	Holes       int // total holes on the property: 9, 18 or 27
	Latitude    float64
	Longitude   float64
	PhotoPath   *string
	ThumbPath   *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing courses.
type Filter struct {
	City       string
	Keyword    string
	ActiveOnly bool
	Page       int
	PageSize   int
}
