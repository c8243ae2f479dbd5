package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing bearer token",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found",
		StatusCode: 404,
	}

	ErrUserExists = &AppError{
		Code:       "USER_ALREADY_EXISTS",
		Message:    "A user with this email already exists",
		StatusCode: 409,
	}

	ErrInvalidEmail = &AppError{
		Code:       "INVALID_EMAIL",
		Message:    "Email address is not valid",
		StatusCode: 400,
	}

	ErrDecodeImage = &AppError{
		Code:       "DECODE_ERROR",
		Message:    "Image bytes could not be decoded",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected, ensure exactly one face is visible",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, ensure exactly one face is visible",
		StatusCode: 422,
	}

	ErrNoSamples = &AppError{
		Code:       "NO_SAMPLES",
		Message:    "No usable face samples found for training",
		StatusCode: 422,
	}

	ErrModelUntrained = &AppError{
		Code:       "MODEL_UNTRAINED",
		Message:    "Recognition model has not been trained yet",
		StatusCode: 409,
	}

	ErrNoResults = &AppError{
		Code:       "NO_RESULTS",
		Message:    "No recognition results to authorize",
		StatusCode: 422,
	}

	ErrSessionBusy = &AppError{
		Code:       "SESSION_BUSY",
		Message:    "Capture session is training and cannot accept frames",
		StatusCode: 409,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
