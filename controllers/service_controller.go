package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

type ServiceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewServiceController(db *gorm.DB, logger *log.Logger) *ServiceController {
	return &ServiceController{DB: db, Logger: logger}
}

type serviceInput struct {
	Name        string  `json:"name" form:"name" validate:"required,max=100"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price" validate:"gte=0"`
}

// ListServices is public reference data.
func (sc *ServiceController) ListServices(c *fiber.Ctx) error {
	var services []models.Service
	if err := sc.DB.Order("name asc").Find(&services).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list services", err)
	}
	return c.JSON(utils.SuccessResponse(services))
}

func (sc *ServiceController) CreateService(c *fiber.Ctx) error {
	var input serviceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	service := models.Service{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	if err := sc.DB.Create(&service).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create service", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(service))
}

func (sc *ServiceController) UpdateService(c *fiber.Ctx) error {
	var service models.Service
	if err := sc.DB.First(&service, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Service")
	}

	var input serviceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	service.Name = input.Name
	service.Description = input.Description
	service.Price = input.Price

	if err := sc.DB.Save(&service).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update service", err)
	}
	return c.JSON(utils.SuccessResponse(service))
}

// DeleteService removes a catalog entry and cascades to its bookings.
func (sc *ServiceController) DeleteService(c *fiber.Ctx) error {
	var service models.Service
	if err := sc.DB.First(&service, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Service")
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		var bookings []models.Booking
		if err := tx.Where("service_id = ?", service.ID).Find(&bookings).Error; err != nil {
			return err
		}
		for _, booking := range bookings {
			if err := deleteBookingCascade(tx, &booking); err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&service).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete service", err)
	}

	sc.Logger.Printf("admin deleted service %d (%s)", service.ID, service.Name)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Service deleted successfully",
	}))
}
