package models

import (
	"gorm.io/gorm"
)

// Role is the closed three-tier hierarchy: regular < staff < admin.
// Admin always carries staff privilege, so "superuser without staff"
// is unrepresentable.
type Role string

const (
	RoleRegular Role = "regular"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleRegular: 0,
	RoleStaff:   1,
	RoleAdmin:   2,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above other in the hierarchy.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// HasStaff reports staff-level privilege (staff or admin).
func (r Role) HasStaff() bool {
	return r.AtLeast(RoleStaff)
}

// User represents an account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Access control
	Role Role `gorm:"type:varchar(10);not null;default:'regular'" json:"role"`

	// Relations
	Profile  *Profile  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"profile,omitempty"`
	Bookings []Booking `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"bookings,omitempty"`
	Posts    []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// Profile extends a User with presentation data. Exactly one exists per
// user; it is created inside the same transaction that creates the user.
type Profile struct {
	gorm.Model

	UserID    uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Image     string  `gorm:"not null;default:'default.jpg'" json:"image"`
	TechStack *string `json:"tech_stack,omitempty"`
}

// CreateUserWithProfile persists a user and its paired profile atomically.
// Duplicate username/email surfaces as gorm.ErrDuplicatedKey from the
// unique indexes, never from a racy pre-check.
func CreateUserWithProfile(db *gorm.DB, user *User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&Profile{UserID: user.ID}).Error
	})
}
