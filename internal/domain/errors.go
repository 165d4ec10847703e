package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidContent    = errors.New("invalid content")
	ErrInsufficientQuota = errors.New("insufficient quota")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrNotYetActive      = errors.New("not yet active")
	ErrExpired           = errors.New("expired")
)
