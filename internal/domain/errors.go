package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session and round engine. None of these are
// fatal; they surface to the offending client as an error event and
// leave state untouched.
var (
	ErrValidation       = errors.New("validation failed")
	ErrIdentityConflict = errors.New("identity already claimed")
	ErrSettingsLocked   = errors.New("settings locked while game is running")
	ErrUnknownRound     = errors.New("unknown round")
	ErrNotRunning       = errors.New("no round is running")
	ErrAlreadyRunning   = errors.New("a round is already running")
)

// Validationf wraps ErrValidation with a player-visible reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
