package models

import "time"

type Inventory struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	RemainingCount int       `json:"remaining_count"`
	ExpirationDate time.Time `gorm:"type:date" json:"expiration_date"`

	Bookings []Booking `json:"bookings,omitempty"`
}

func (Inventory) TableName() string {
	return "inventory_table"
}
