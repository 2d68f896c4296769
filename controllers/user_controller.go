package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

// UserController handles admin-only user management.
type UserController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewUserController(db *gorm.DB, logger *log.Logger) *UserController {
	return &UserController{DB: db, Logger: logger}
}

// ListUsers returns all accounts, newest first.
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Preload("Profile").Order("created_at desc").Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list users", err)
	}
	return c.JSON(utils.SuccessResponse(users))
}

// CreateUser lets an admin create an account with an explicit role.
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var input struct {
		Username string      `json:"username" form:"username" validate:"required,max=100"`
		Email    string      `json:"email" form:"email" validate:"required,email"`
		Password string      `json:"password" form:"password" validate:"required,min=8"`
		Role     models.Role `json:"role" form:"role"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Passwords are never echoed back on rejection.
	values := fiber.Map{"username": input.Username, "email": input.Email, "role": input.Role}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), values)
	}
	if input.Role == "" {
		input.Role = models.RoleRegular
	}
	if !input.Role.Valid() {
		return utils.ValidationErrorResponse(c, "role must be one of regular, staff, admin", values)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}

	if err := models.CreateUserWithProfile(uc.DB, &user); err != nil {
		if utils.IsDuplicateKey(err) {
			return utils.ValidationErrorResponse(c, "Username or email already taken", values)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	uc.Logger.Printf("admin created user %d (%s)", user.ID, user.Role)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// UpdateUser changes username/email/role of any account.
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "User")
	}

	var input struct {
		Username string      `json:"username" form:"username" validate:"required,max=100"`
		Email    string      `json:"email" form:"email" validate:"required,email"`
		Role     models.Role `json:"role" form:"role" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}
	if !input.Role.Valid() {
		return utils.ValidationErrorResponse(c, "role must be one of regular, staff, admin", input)
	}

	user.Username = input.Username
	user.Email = input.Email
	user.Role = input.Role

	if err := uc.DB.Save(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return utils.ValidationErrorResponse(c, "Username or email already taken", input)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update user", err)
	}

	return c.JSON(utils.SuccessResponse(user))
}

// DeleteUser removes an account. Owned bookings (and their assignment
// records) go with it.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "User")
	}

	err := uc.DB.Transaction(func(tx *gorm.DB) error {
		var bookings []models.Booking
		if err := tx.Where("owner_id = ?", user.ID).Find(&bookings).Error; err != nil {
			return err
		}
		for _, booking := range bookings {
			if err := deleteBookingCascade(tx, &booking); err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		// Hard delete frees the username/email for re-registration.
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}

	uc.Logger.Printf("admin deleted user %d (%s)", user.ID, user.Username)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "User deleted successfully",
	}))
}
