package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a staff team work gets routed to
type Group struct {
	gorm.Model

	Name     string `gorm:"not null" json:"name"`
	LeaderID *uint  `gorm:"index" json:"leader_id,omitempty"`

	// Relations
	Leader        *User          `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Members       []GroupMember  `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members,omitempty"`
	Messages      []GroupMessage `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"messages,omitempty"`
	GroupBookings []GroupBooking `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"group_bookings,omitempty"`
}

// GroupMember is the membership join table. The composite unique index
// keeps a user from appearing in the same group twice.
type GroupMember struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GroupID uint `gorm:"not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_group_user" json:"user_id"`

	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupMessage is one entry in a group's append-only chat log, ordered by
// creation time with insertion order breaking ties. At least one of
// Content/File must be present; that is validated before persisting.
type GroupMessage struct {
	gorm.Model

	GroupID  uint   `gorm:"not null;index" json:"group_id"`
	SenderID uint   `gorm:"not null;index" json:"sender_id"`
	Content  string `gorm:"type:text" json:"content"`
	File     string `json:"file,omitempty"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// GroupReport is the leader's one-time closing submission for a group
// booking. The unique index enforces at most one per GroupBooking.
type GroupReport struct {
	gorm.Model

	GroupBookingID uint      `gorm:"uniqueIndex;not null" json:"group_booking_id"`
	ReportText     string    `gorm:"type:text;not null" json:"report_text"`
	SubmittedByID  uint      `gorm:"not null" json:"submitted_by_id"`
	SubmittedAt    time.Time `gorm:"autoCreateTime" json:"submitted_at"`

	SubmittedBy User `gorm:"foreignKey:SubmittedByID" json:"submitted_by,omitempty"`
}

// IsMemberOrLeader reports whether the user may read or post to the
// group's chat. Leaders are not required to also be members.
func (g *Group) IsMemberOrLeader(db *gorm.DB, userID uint) (bool, error) {
	if g.LeaderID != nil && *g.LeaderID == userID {
		return true, nil
	}
	var count int64
	err := db.Model(&GroupMember{}).
		Where("group_id = ? AND user_id = ?", g.ID, userID).
		Count(&count).Error
	return count > 0, err
}
