package course

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/storage"
	"github.com/google/uuid"
)

type CreateRequest struct {
	Name        string
	Description string
	Address     string
	City        string
	Holes       int
	Latitude    float64
	Longitude   float64
	Active      bool
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Address     *string
	City        *string
	Holes       *int
	Latitude    *float64
	Longitude   *float64
	Active      *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Course, error)
	GetByID(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context, filter Filter) ([]*Course, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Course, error)
	Delete(ctx context.Context, id string) error

	// SetPhoto stores the uploaded image plus a generated thumbnail and
	// records both paths on the course.
	SetPhoto(ctx context.Context, id string, content io.Reader) (*Course, error)
	GetPhoto(ctx context.Context, id string, thumbnail bool) (io.ReadCloser, error)
}

const (
	thumbMaxWidth  = 480
	thumbMaxHeight = 320
)

type service struct {
	repo      Repository
	storage   storage.Storage
	processor *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage, processor *storage.ImageProcessor) Service {
	return &service{
		repo:      repo,
		storage:   store,
		processor: processor,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Course, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if !validHoles(req.Holes) {
		return nil, ErrInvalidHoles
	}

	co := &Course{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Holes:       req.Holes,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Active:      req.Active,
	}

	if err := s.repo.Create(ctx, co); err != nil {
		return nil, err
	}
	return co, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Course, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Course, error) {
	co, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		co.Name = *req.Name
	}
	if req.Description != nil {
		co.Description = *req.Description
	}
	if req.Address != nil {
		co.Address = *req.Address
	}
	if req.City != nil {
		co.City = *req.City
	}
	if req.Holes != nil {
		if !validHoles(*req.Holes) {
			return nil, ErrInvalidHoles
		}
		co.Holes = *req.Holes
	}
	if req.Latitude != nil {
		co.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		co.Longitude = *req.Longitude
	}
	if req.Active != nil {
		co.Active = *req.Active
	}

	if err := s.repo.Update(ctx, co); err != nil {
		return nil, err
	}
	return co, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	co, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Best effort: stale photo files are harmless, a missing course row is
	// not, so the DB delete decides the outcome.
	if co.PhotoPath != nil {
		_ = s.storage.Delete(ctx, *co.PhotoPath)
	}
	if co.ThumbPath != nil {
		_ = s.storage.Delete(ctx, *co.ThumbPath)
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) SetPhoto(ctx context.Context, id string, content io.Reader) (*Course, error) {
	co, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Read the upload once; it feeds both the original and the thumbnail.
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}

	thumb, err := s.processor.GenerateThumbnail(bytes.NewReader(data), thumbMaxWidth, thumbMaxHeight)
	if err != nil {
		return nil, fmt.Errorf("generate thumbnail failed: %w", err)
	}

	token := uuid.NewString()
	photoPath := fmt.Sprintf("courses/%s/%s.jpg", id, token)
	thumbPath := fmt.Sprintf("courses/%s/%s_thumb.jpg", id, token)

	if err := s.storage.Save(ctx, photoPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("save photo failed: %w", err)
	}
	if err := s.storage.Save(ctx, thumbPath, thumb); err != nil {
		_ = s.storage.Delete(ctx, photoPath)
		return nil, fmt.Errorf("save thumbnail failed: %w", err)
	}

	oldPhoto, oldThumb := co.PhotoPath, co.ThumbPath
	co.PhotoPath = &photoPath
	co.ThumbPath = &thumbPath
	if err := s.repo.Update(ctx, co); err != nil {
		_ = s.storage.Delete(ctx, photoPath)
		_ = s.storage.Delete(ctx, thumbPath)
		return nil, err
	}

	if oldPhoto != nil {
		_ = s.storage.Delete(ctx, *oldPhoto)
	}
	if oldThumb != nil {
		_ = s.storage.Delete(ctx, *oldThumb)
	}

	return co, nil
}

func (s *service) GetPhoto(ctx context.Context, id string, thumbnail bool) (io.ReadCloser, error) {
	co, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path := co.PhotoPath
	if thumbnail {
		path = co.ThumbPath
	}
	if path == nil {
		return nil, ErrNoPhoto
	}
	return s.storage.Get(ctx, *path)
}

func validHoles(h int) bool {
	return h == 9 || h == 18 || h == 27
}
