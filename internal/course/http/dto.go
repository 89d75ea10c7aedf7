package http

import (
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/course"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
)

// ListCoursesRequest defines query parameters for the public course listing.
type ListCoursesRequest struct {
	request.ListParams
	City    string `form:"city"`
	Keyword string `form:"keyword"`
}

// Validate performs custom validation for ListCoursesRequest.
func (r *ListCoursesRequest) Validate() error {
	return nil
}

// CreateCourseBody is the admin payload for creating a course.
type CreateCourseBody struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Holes       int     `json:"holes" binding:"required,oneof=9 18 27"`
	Latitude    float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Active      bool    `json:"active"`
}

func (r *CreateCourseBody) Validate() error {
	return nil
}

// UpdateCourseBody is the admin PATCH payload. Pointers distinguish unset
// fields from zero values.
type UpdateCourseBody struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Holes       *int     `json:"holes" binding:"omitempty,oneof=9 18 27"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Active      *bool    `json:"active"`
}

func (r *UpdateCourseBody) Validate() error {
	return nil
}

type CourseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Holes       int       `json:"holes"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	HasPhoto    bool      `json:"has_photo"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseTag is a brief representation of a course for embedding.
type CourseTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewCourseResponse(co *course.Course) CourseResponse {
	return CourseResponse{
		ID:          co.ID,
		Name:        co.Name,
		Description: co.Description,
		Address:     co.Address,
		City:        co.City,
		Holes:       co.Holes,
		Latitude:    co.Latitude,
		Longitude:   co.Longitude,
		HasPhoto:    co.PhotoPath != nil,
		Active:      co.Active,
		CreatedAt:   co.CreatedAt,
		UpdatedAt:   co.UpdatedAt,
	}
}
