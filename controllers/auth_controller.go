package controller

import (
	"context"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"techpals/config"
	"techpals/models"
	"techpals/utils"
)

type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required,max=100"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	// Identifier accepts either a username or an email address.
	Identifier string `json:"identifier" form:"identifier" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	Dashboard string       `json:"dashboard"`
}

// DashboardRouteFor picks the landing dashboard, evaluated top-down:
// admin first, then staff, else regular.
func DashboardRouteFor(role models.Role) string {
	switch {
	case role.IsAdmin():
		return "/dashboard/admin"
	case role.HasStaff():
		return "/dashboard/staff"
	default:
		return "/dashboard/user"
	}
}

func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Passwords are never echoed back on rejection.
	values := fiber.Map{"username": req.Username, "email": req.Email}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), values)
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.ValidationErrorResponse(c, "email must be a valid email", values)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleRegular,
	}

	// The profile is created in the same transaction; duplicate
	// username/email comes back as a translated unique violation.
	if err := models.CreateUserWithProfile(config.DB, &user); err != nil {
		if utils.IsDuplicateKey(err) {
			return utils.ValidationErrorResponse(c, "Username or email already taken", values)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"user":    user,
		"message": "User created successfully",
	}))
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), fiber.Map{"identifier": req.Identifier})
	}

	// The identifier is tried against both username and email. Failure
	// stays generic so the response never reveals which field was wrong.
	var user models.User
	err := config.DB.
		Where("username = ? OR email = ?", req.Identifier, req.Identifier).
		First(&user).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	token, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(utils.SuccessResponse(AuthResponse{
		Token:     token,
		User:      &user,
		Dashboard: DashboardRouteFor(user.Role),
	}))
}

func Logout(c *fiber.Ctx) error {
	// Revoke the presented token until its natural expiry.
	if config.Redis != nil {
		tokenID, _ := c.Locals("tokenID").(string)
		expiresAt, _ := c.Locals("tokenExpiresAt").(time.Time)
		if tokenID != "" {
			ttl := time.Until(expiresAt)
			if ttl > 0 {
				config.Redis.Set(context.Background(), "revoked:"+tokenID, "1", ttl)
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		HTTPOnly: true,
		MaxAge:   -1,
	})

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "You have been logged out successfully",
	}))
}

func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(utils.SuccessResponse(user))
}
