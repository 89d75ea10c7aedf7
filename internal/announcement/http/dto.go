package http

import (
	"errors"
	"strings"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/announcement"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
)

type AnnouncementResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewResponse(a *announcement.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type CreateRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type UpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title must not be blank")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content must not be blank")
	}
	return nil
}

func (r *UpdateRequest) Validate() error {
	if r.Title == nil && r.Content == nil {
		return errors.New("at least one field must be provided")
	}
	return nil
}

type ListAnnouncementsRequest struct {
	request.ListParams
	Keyword   string `form:"keyword"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=created_at updated_at title"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc ASC DESC"`
}
