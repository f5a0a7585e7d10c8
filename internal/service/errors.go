package service

import (
	"errors"
	"fmt"
)

// Kind категория ошибки, по которой граница выбирает ответ
type Kind int

const (
	KindStore Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "store"
	}
}

// Error ошибка жизненного цикла слота с кодом и категорией
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по коду, чтобы копии через WithError совпадали с эталонной ошибкой
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithError возвращает копию с причиной
func (e *Error) WithError(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

var (
	ErrSlotNotFound = &Error{Kind: KindNotFound, Code: "SLOT_NOT_FOUND", Message: "slot not found"}
	ErrUserNotFound = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}

	ErrInvalidCoach   = &Error{Kind: KindValidation, Code: "INVALID_COACH", Message: "invalid coach ID"}
	ErrInvalidStudent = &Error{Kind: KindValidation, Code: "INVALID_STUDENT", Message: "invalid student ID"}
	ErrInvalidScore   = &Error{Kind: KindValidation, Code: "INVALID_SCORE", Message: "satisfaction score must be between 1 and 5"}
	ErrInvalidTime    = &Error{Kind: KindValidation, Code: "INVALID_TIME", Message: "invalid start time"}
	ErrNotSlotOwner   = &Error{Kind: KindValidation, Code: "NOT_SLOT_OWNER", Message: "coach does not own this slot"}

	ErrAlreadyBooked     = &Error{Kind: KindConflict, Code: "ALREADY_BOOKED", Message: "slot is already booked"}
	ErrSlotNotBooked     = &Error{Kind: KindConflict, Code: "SLOT_NOT_BOOKED", Message: "cannot update feedback for an unbooked slot"}
	ErrSessionNotElapsed = &Error{Kind: KindConflict, Code: "SESSION_NOT_ELAPSED", Message: "session has not finished yet"}
	ErrSlotInPast        = &Error{Kind: KindConflict, Code: "SLOT_IN_PAST", Message: "slot has already started"}

	errStore = &Error{Kind: KindStore, Code: "STORE_ERROR", Message: "storage failure"}
)

// StoreError оборачивает сбой хранилища
func StoreError(err error) error {
	return errStore.WithError(err)
}

// KindOf возвращает категорию ошибки; неизвестные ошибки считаются сбоем хранилища
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// AsError достаёт *Error из цепочки
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
