package apperror

// AppError is an error with an HTTP status attached. Services return these
// for failures the client can act on; anything else surfaces as a 500.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError from a status code and a user-facing message.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}
