package models

import "gorm.io/gorm"

// Service is a catalog entry clients can book
type Service struct {
	gorm.Model

	Name        string  `gorm:"not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`

	// Relations
	Bookings []Booking `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"bookings,omitempty"`
}
