package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrLearningPathNotFound = errors.New("learning path not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrProgressNotFound     = errors.New("progress not found")
	ErrCertificateNotFound  = errors.New("certificate not found")
	ErrCertificateExists    = errors.New("an active certificate already exists for this domain")
	ErrCertificateRevoked   = errors.New("certificate has been revoked")
	ErrContentGeneration    = errors.New("content generation failed")
	ErrInvalidAIResponse    = errors.New("invalid AI response")
	ErrRenderFailed         = errors.New("certificate rendering failed")
	ErrLockNotAcquired      = errors.New("another request is in progress")
	ErrDomainRequired       = errors.New("domain is required")
)
