package user

import (
	"net/http"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidLogin     = apperror.New(http.StatusUnauthorized, "invalid email or password")
)

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	IsSystemAdmin bool       `json:"isSystemAdmin"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}
