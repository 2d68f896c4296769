package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a unit of work tied to a booking. Its group is derived
// transitively through the booking's GroupBooking.
type Task struct {
	gorm.Model

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	BookingID   uint      `gorm:"not null;index" json:"booking_id"`

	ReminderSentAt *time.Time `json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
