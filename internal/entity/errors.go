package entity

import "errors"

var (
	ErrExhibitionNotFound    = errors.New("exhibition not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrLeadNotFound          = errors.New("lead not found")
	ErrDuplicateRegistration = errors.New("email already registered for this exhibition")
	ErrDuplicateInterest     = errors.New("product interest already recorded")
)
