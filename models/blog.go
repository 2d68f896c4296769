package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups blog posts
type Category struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	Posts []Post `gorm:"foreignKey:CategoryID" json:"posts,omitempty"`
}

// Post is a published blog entry. Slug and Excerpt are derived once at
// creation when absent and never recomputed afterwards.
type Post struct {
	gorm.Model

	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	CategoryID    *uint     `gorm:"index" json:"category_id,omitempty"`
	Content       string    `gorm:"type:text" json:"content"`
	Excerpt       string    `json:"excerpt"`
	Image         string    `json:"image,omitempty"`
	PublishedDate time.Time `gorm:"autoCreateTime;index" json:"published_date"`

	Author   User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
