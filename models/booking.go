package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus is the explicit lifecycle state of a booking. Transitions
// happen only through task assignment (requested -> assigned) and report
// submission (assigned -> closed).
type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingAssigned  BookingStatus = "assigned"
	BookingClosed    BookingStatus = "closed"
)

// Booking is a user's request for a service with a due date
type Booking struct {
	gorm.Model

	OwnerID   uint          `gorm:"not null;index" json:"owner_id"`
	ServiceID uint          `gorm:"not null;index" json:"service_id"`
	DueDate   time.Time     `gorm:"not null" json:"due_date"`
	Status    BookingStatus `gorm:"type:varchar(20);not null;default:'requested'" json:"status"`

	ReminderSentAt *time.Time `json:"-"`

	// Relations
	Owner        User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Service      Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	GroupBooking *GroupBooking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"group_booking,omitempty"`
	Tasks        []Task        `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tasks,omitempty"`
}

// GroupBooking assigns a booking to the one group responsible for it.
// The unique index on BookingID backs the at-most-one-per-booking rule;
// repeated assignments update this row instead of creating a second one.
type GroupBooking struct {
	gorm.Model

	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	BookingID uint      `gorm:"uniqueIndex;not null" json:"booking_id"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	// Relations
	Group   Group        `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Booking *Booking     `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Report  *GroupReport `gorm:"foreignKey:GroupBookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"report,omitempty"`
}
