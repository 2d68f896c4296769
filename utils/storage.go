package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"techpals/config"
)

// SaveUpload stores an uploaded file under the configured upload
// directory and returns a stable relative reference for later retrieval.
// Files are renamed to a random UUID to avoid collisions and path tricks.
func SaveUpload(c *fiber.Ctx, file *multipart.FileHeader, subdir string) (string, error) {
	dir := filepath.Join(config.AppConfig.UploadDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dest := filepath.Join(dir, name)
	if err := c.SaveFile(file, dest); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}
