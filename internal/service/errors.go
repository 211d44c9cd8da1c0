package service

import (
	"errors"
	"fmt"
)

// Ошибки движка бронирования. Все исправимы на стороне вызывающего,
// проверяются через errors.Is.
var (
	ErrInvalidRange       = errors.New("end time must be after start time")
	ErrSlotConflict       = errors.New("slot conflicts with an existing slot")
	ErrNotFound           = errors.New("not found")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrAlreadyTerminal    = errors.New("status is already terminal")
	ErrSlotInUse          = errors.New("slot has an active appointment")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotApproved        = errors.New("account is pending approval")
	ErrAlreadyExists      = errors.New("already registered")
)

// storeErr помечает ошибку ввода-вывода хранилища как ErrStoreUnavailable.
// Повторные попытки - ответственность вызывающего, не движка.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
