package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

type ProfileController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProfileController(db *gorm.DB, logger *log.Logger) *ProfileController {
	return &ProfileController{DB: db, Logger: logger}
}

// GetProfile returns the caller's profile, recreating it if it has gone
// missing for some reason.
func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	profile, err := pc.getOrCreate(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", err)
	}
	return c.JSON(utils.SuccessResponse(profile))
}

// UpdateProfile accepts an optional multipart image and an optional
// tech_stack field. The response includes the caller's dashboard route so
// clients can redirect by role.
func (pc *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	profile, err := pc.getOrCreate(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", err)
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		path, err := utils.SaveUpload(c, file, "profile_pics")
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store image", err)
		}
		profile.Image = path
	}

	if techStack := c.FormValue("tech_stack"); techStack != "" {
		profile.TechStack = utils.Pointer(techStack)
	}

	if err := pc.DB.Save(profile).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"profile":   profile,
		"dashboard": DashboardRouteFor(user.Role),
	}))
}

func (pc *ProfileController) getOrCreate(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := pc.DB.Where(models.Profile{UserID: userID}).FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
