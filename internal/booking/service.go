package booking

import (
	"context"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/course"
	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	"github.com/fairwaylabs/teetime-backend/internal/quote"
)

// CreateRequest reserves a tee time against a previously issued quote. The
// quote fields must arrive exactly as the quote endpoint produced them; the
// service re-verifies the signature and expiry before committing.
type CreateRequest struct {
	UserID    string
	CourseID  string
	Date      string
	Time      string
	Players   int
	Holes     int
	PromoCode *string
	Quote     quote.VerifySubmission
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Cancel(ctx context.Context, id string, requesterUserID string, isSysAdmin bool) (*Booking, error)
	Confirm(ctx context.Context, id string) (*Booking, error)
}

type service struct {
	repo          Repository
	courseService course.Service
	quoteService  quote.Service
	now           func() time.Time
}

func NewService(repo Repository, courseService course.Service, quoteService quote.Service) Service {
	return NewServiceWithClock(repo, courseService, quoteService, time.Now)
}

func NewServiceWithClock(repo Repository, courseService course.Service, quoteService quote.Service, now func() time.Time) Service {
	return &service{
		repo:          repo,
		courseService: courseService,
		quoteService:  quoteService,
		now:           now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	teeDate, err := pricing.ParseDate(req.Date)
	if err != nil {
		return nil, pricing.ErrInvalidDate
	}
	teeMinute, err := pricing.ParseClock(req.Time)
	if err != nil {
		return nil, pricing.ErrInvalidTime
	}

	teeAt := teeDate.Add(time.Duration(teeMinute) * time.Minute)
	if teeAt.Before(s.now().UTC()) {
		return nil, ErrTeeTimePast
	}

	// The quote must still be authentic and fresh; a failed verification
	// aborts the booking before anything is written.
	if err := s.quoteService.Verify(req.Quote); err != nil {
		return nil, err
	}

	co, err := s.courseService.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if !co.Active {
		return nil, ErrCourseInactive
	}

	taken, err := s.repo.CountPlayers(ctx, req.CourseID, teeDate, teeMinute)
	if err != nil {
		return nil, err
	}
	if taken+req.Players > slotCapacity {
		return nil, ErrSlotFull
	}

	b := &Booking{
		CourseID:   req.CourseID,
		UserID:     req.UserID,
		TeeDate:    teeDate,
		TeeMinute:  teeMinute,
		Players:    req.Players,
		Holes:      req.Holes,
		Status:     StatusPending,
		TotalCents: req.Quote.TotalCents,
		Currency:   req.Quote.Currency,
		QuoteHash:  req.Quote.QuoteHash,
		PromoCode:  req.PromoCode,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	b.CourseName = co.Name

	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

// Cancel sets a booking to cancelled. Owners may cancel their own bookings;
// admins may cancel any.
func (s *service) Cancel(ctx context.Context, id string, requesterUserID string, isSysAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isSysAdmin && b.UserID != requesterUserID {
		return nil, ErrPermissionDenied
	}
	if b.Status == StatusCancelled {
		return b, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	return b, nil
}

// Confirm marks a booking paid. Called by the payment flow after the
// gateway authorizes exactly the booking's total.
func (s *service) Confirm(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed); err != nil {
		return nil, err
	}
	b.Status = StatusConfirmed
	return b, nil
}
