package service

import "errors"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrSessionNotFound  = errors.New("session not found")
	// ErrInvalidUtterance is an empty or whitespace-only answer
	ErrInvalidUtterance = errors.New("utterance is empty")
	ErrFieldOutOfRange  = errors.New("field index out of range")
	// ErrSessionBusy means another turn held the session lock for the whole wait budget
	ErrSessionBusy = errors.New("session is busy")
)
