package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/teetime-backend/internal/course"
	"github.com/fairwaylabs/teetime-backend/internal/quote"
)

var bookNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	bookings map[string]*Booking
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[string]*Booking{}}
}

func (f *fakeRepo) Create(_ context.Context, b *Booking) error {
	f.nextID++
	b.ID = string(rune('a' + f.nextID - 1))
	b.CreatedAt = bookNow
	b.UpdatedAt = bookNow
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range f.bookings {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	b, ok := f.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeRepo) CountPlayers(_ context.Context, courseID string, teeDate time.Time, teeMinute int) (int, error) {
	total := 0
	for _, b := range f.bookings {
		if b.CourseID == courseID && b.TeeDate.Equal(teeDate) && b.TeeMinute == teeMinute && b.Status != StatusCancelled {
			total += b.Players
		}
	}
	return total, nil
}

// stubCourses answers GetByID only; nothing else is called from bookings.
type stubCourses struct {
	course.Service
	course *course.Course
	err    error
}

func (s *stubCourses) GetByID(context.Context, string) (*course.Course, error) {
	return s.course, s.err
}

type stubQuotes struct {
	verifyErr error
}

func (s *stubQuotes) BuildQuote(context.Context, quote.BuildRequest) (*quote.Quote, error) {
	return nil, nil
}

func (s *stubQuotes) Verify(quote.VerifySubmission) error {
	return s.verifyErr
}

func testService(repo *fakeRepo, courses *stubCourses, quotes *stubQuotes) Service {
	return NewServiceWithClock(repo, courses, quotes, func() time.Time { return bookNow })
}

func activeCourse() *stubCourses {
	return &stubCourses{course: &course.Course{ID: "course-1", Name: "Pine Hollow", Holes: 18, Active: true}}
}

func createReq() CreateRequest {
	return CreateRequest{
		UserID:   "user-1",
		CourseID: "course-1",
		Date:     "2025-06-07",
		Time:     "10:00",
		Players:  2,
		Holes:    18,
		Quote: quote.VerifySubmission{
			Currency:   "USD",
			TotalCents: 10440,
			QuoteHash:  "abc123",
		},
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("verified quote creates a pending booking", func(t *testing.T) {
		repo := newFakeRepo()
		svc := testService(repo, activeCourse(), &stubQuotes{})

		b, err := svc.Create(ctx, createReq())
		require.NoError(t, err)
		assert.Equal(t, StatusPending, b.Status)
		assert.Equal(t, int64(10440), b.TotalCents)
		assert.Equal(t, "abc123", b.QuoteHash)
		assert.Equal(t, "Pine Hollow", b.CourseName)
		assert.Len(t, repo.bookings, 1)
	})

	t.Run("failed quote verification aborts before any write", func(t *testing.T) {
		repo := newFakeRepo()
		svc := testService(repo, activeCourse(), &stubQuotes{verifyErr: quote.ErrInvalidHash})

		_, err := svc.Create(ctx, createReq())
		assert.ErrorIs(t, err, quote.ErrInvalidHash)
		assert.Empty(t, repo.bookings)
	})

	t.Run("expired quote aborts the booking", func(t *testing.T) {
		repo := newFakeRepo()
		svc := testService(repo, activeCourse(), &stubQuotes{verifyErr: quote.ErrExpired})

		_, err := svc.Create(ctx, createReq())
		assert.ErrorIs(t, err, quote.ErrExpired)
	})

	t.Run("inactive course rejects bookings", func(t *testing.T) {
		courses := &stubCourses{course: &course.Course{ID: "course-1", Active: false}}
		svc := testService(newFakeRepo(), courses, &stubQuotes{})

		_, err := svc.Create(ctx, createReq())
		assert.ErrorIs(t, err, ErrCourseInactive)
	})

	t.Run("tee time in the past is rejected", func(t *testing.T) {
		svc := testService(newFakeRepo(), activeCourse(), &stubQuotes{})

		req := createReq()
		req.Date = "2025-05-01"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrTeeTimePast)
	})

	t.Run("slot capacity is enforced", func(t *testing.T) {
		repo := newFakeRepo()
		svc := testService(repo, activeCourse(), &stubQuotes{})

		req := createReq()
		req.Players = 3
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)

		req.Players = 2 // 3 + 2 > 4
		_, err = svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrSlotFull)

		req.Players = 1 // exactly fills the slot
		_, err = svc.Create(ctx, req)
		assert.NoError(t, err)
	})

	t.Run("cancelled bookings free their slot", func(t *testing.T) {
		repo := newFakeRepo()
		svc := testService(repo, activeCourse(), &stubQuotes{})

		req := createReq()
		req.Players = 4
		b, err := svc.Create(ctx, req)
		require.NoError(t, err)

		_, err = svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrSlotFull)

		_, err = svc.Cancel(ctx, b.ID, "user-1", false)
		require.NoError(t, err)

		_, err = svc.Create(ctx, req)
		assert.NoError(t, err)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, *Booking) {
		t.Helper()
		repo := newFakeRepo()
		svc := testService(repo, activeCourse(), &stubQuotes{})
		b, err := svc.Create(ctx, createReq())
		require.NoError(t, err)
		return svc, b
	}

	t.Run("owner can cancel", func(t *testing.T) {
		svc, b := setup(t)
		cancelled, err := svc.Cancel(ctx, b.ID, "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("other users cannot cancel", func(t *testing.T) {
		svc, b := setup(t)
		_, err := svc.Cancel(ctx, b.ID, "user-2", false)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("admin can cancel any booking", func(t *testing.T) {
		svc, b := setup(t)
		cancelled, err := svc.Cancel(ctx, b.ID, "admin-1", true)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		svc, b := setup(t)
		_, err := svc.Cancel(ctx, b.ID, "user-1", false)
		require.NoError(t, err)
		again, err := svc.Cancel(ctx, b.ID, "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, again.Status)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Cancel(ctx, "missing", "user-1", false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConfirmBooking(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo, activeCourse(), &stubQuotes{})

	b, err := svc.Create(ctx, createReq())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	// Only pending bookings can be confirmed.
	_, err = svc.Confirm(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
