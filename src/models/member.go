package models

import "time"

type Member struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	BookingCount int       `json:"booking_count"`
	DateJoined   time.Time `json:"date_joined"`

	Bookings []Booking `json:"bookings,omitempty"`
}

func (Member) TableName() string {
	return "members_table"
}
