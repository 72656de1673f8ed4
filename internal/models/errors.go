package models

import (
	"errors"
)

var (
	ErrUserNotFound        = errors.New("models: line user not found")
	ErrRuleNotFound        = errors.New("models: remarketing rule not found")
	ErrStateConflict       = errors.New("models: conversation state changed concurrently")
	ErrDuplicateRuleOffset = errors.New("models: active rule with same hour offset already exists")
	ErrRunInProgress       = errors.New("models: remarketing run already in progress")
)
