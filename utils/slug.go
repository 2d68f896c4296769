package utils

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UniqueSlug derives a slug from text and disambiguates collisions with a
// numeric suffix (hello-world, hello-world-2, ...). The unique index on
// the column remains the final arbiter under concurrent creation.
func UniqueSlug(db *gorm.DB, model interface{}, text string) (string, error) {
	base := slug.Make(text)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Model(model).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Excerpt derives a post excerpt: the first 150 characters of content.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= 150 {
		return content
	}
	return string(runes[:150])
}
