package types

import "errors"

// ErrCode identifies a booking engine failure to API callers.
type ErrCode string

const (
	ErrMemberNotFound    ErrCode = "MEMBER_NOT_FOUND"
	ErrInventoryNotFound ErrCode = "INVENTORY_NOT_FOUND"
	ErrBookingNotFound   ErrCode = "BOOKING_NOT_FOUND"
	ErrBookingLimit      ErrCode = "BOOKING_LIMIT_REACHED"
	ErrOutOfStock        ErrCode = "NO_STOCK"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func NewError(c ErrCode) error { return codedError{code: c} }

// Code extracts the engine error code, or "" for unexpected failures.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	MemberID    uint `json:"member_id" binding:"required"`
	InventoryID uint `json:"inventory_id" binding:"required"`
}

type CancelBookingRequestBody struct {
	Reference string `json:"reference" binding:"required,uuid"`
}

type CreateInventoryRequestBody struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description,omitempty"`
	RemainingCount int    `json:"remaining_count" binding:"min=0"`
	ExpirationDate string `json:"expiration_date" binding:"required,calendardate"`
}

type UpdateInventoryRequestBody struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty" binding:"omitempty,calendardate"`
}

type CreateMemberRequestBody struct {
	Name       string `json:"name" binding:"required"`
	Surname    string `json:"surname" binding:"required"`
	DateJoined string `json:"date_joined,omitempty" binding:"omitempty,stampdate"`
}

type UpdateMemberRequestBody struct {
	Name    *string `json:"name,omitempty"`
	Surname *string `json:"surname,omitempty"`
}
