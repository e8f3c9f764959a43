package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateCompetitor = errors.New("competitor already exists for this company")
	ErrDuplicatePatent     = errors.New("patent application already exists for this company")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrResearchInProgress  = errors.New("research already queued or running for this competitor")
	ErrStatusRegression    = errors.New("document status cannot move backwards")
)
