package models

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateCode = errors.New("voucher code already exists")
	ErrUsageLimit    = errors.New("voucher usage limit reached")
)
