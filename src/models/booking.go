package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking links one member to one inventory item. The uuid reference is the
// external handle used for cancellation; the numeric id never leaves the API.
type Booking struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	MemberID    uint      `json:"member_id"`
	InventoryID uint      `json:"inventory_id"`
	BookingDate time.Time `json:"booking_date"`
	Reference   uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"reference"`

	Member    *Member    `json:"member,omitempty"`
	Inventory *Inventory `json:"inventory,omitempty"`

	MemberName     string `gorm:"-" json:"member_name,omitempty"`
	InventoryTitle string `gorm:"-" json:"inventory_title,omitempty"`
}

func (Booking) TableName() string {
	return "booking_table"
}
