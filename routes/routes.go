package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "techpals/controllers"
	"techpals/middleware"
	"techpals/models"
	"techpals/utils"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	mailer := utils.NewMailer(log.New(os.Stdout, "MAIL: ", log.LstdFlags))

	userController := controller.NewUserController(db, log.New(os.Stdout, "USER: ", log.LstdFlags))
	profileController := controller.NewProfileController(db, log.New(os.Stdout, "PROFILE: ", log.LstdFlags))
	serviceController := controller.NewServiceController(db, log.New(os.Stdout, "SERVICE: ", log.LstdFlags))
	bookingController := controller.NewBookingController(db, log.New(os.Stdout, "BOOKING: ", log.LstdFlags))
	groupController := controller.NewGroupController(db, log.New(os.Stdout, "GROUP: ", log.LstdFlags))
	chatController := controller.NewChatController(db, log.New(os.Stdout, "CHAT: ", log.LstdFlags), mailer)
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags), mailer)
	blogController := controller.NewBlogController(db, log.New(os.Stdout, "BLOG: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	// Auth routes
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/logout", middleware.Protected(), controller.Logout)
	auth.Get("/me", middleware.Protected(), controller.GetCurrentUser)

	// Public reads
	app.Get("/services", serviceController.ListServices)
	app.Get("/blog", blogController.ListPosts)
	app.Get("/blog/category/:slug", blogController.ListPostsByCategory)
	app.Get("/blog/:slug", blogController.GetPost)

	// Everything below requires an authenticated identity
	protected := app.Group("", middleware.Protected())

	protected.Get("/dashboard", dashboardController.GetDashboard)

	// Self-service
	protected.Get("/profile", profileController.GetProfile)
	protected.Put("/profile", profileController.UpdateProfile)

	protected.Post("/bookings", bookingController.CreateBooking)
	protected.Get("/bookings", bookingController.ListBookings)
	protected.Get("/bookings/:id", bookingController.GetBooking)
	protected.Put("/bookings/:id", bookingController.UpdateBooking)
	protected.Delete("/bookings/:id", bookingController.DeleteBooking)

	// Group chat: membership-gated inside the controller
	protected.Get("/groups", groupController.ListGroups)
	protected.Get("/groups/:id", chatController.GetGroupChat)
	protected.Post("/groups/:id/messages", chatController.PostGroupMessage)
	protected.Get("/groups/:id/ws", chatController.UpgradeChatWS, websocket.New(chatController.StreamGroupChat))
	protected.Post("/group-bookings/:id/report", chatController.SubmitGroupReport)

	// Group roster edits: leader-or-admin, checked in the controller
	protected.Put("/groups/:id", groupController.UpdateGroup)

	// Blog authorship
	protected.Post("/blog", blogController.CreatePost)

	// Task listing is staff-or-admin; scoping happens in the controller
	protected.Get("/tasks", taskController.ListTasks)

	// Admin-only management
	admin := protected.Group("", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", userController.ListUsers)
	admin.Post("/users", userController.CreateUser)
	admin.Put("/users/:id", userController.UpdateUser)
	admin.Delete("/users/:id", userController.DeleteUser)

	admin.Post("/services", serviceController.CreateService)
	admin.Put("/services/:id", serviceController.UpdateService)
	admin.Delete("/services/:id", serviceController.DeleteService)

	admin.Post("/groups", groupController.CreateGroup)
	admin.Delete("/groups/:id", groupController.DeleteGroup)

	admin.Post("/tasks", taskController.CreateTask)
	admin.Put("/tasks/:id", taskController.UpdateTask)
	admin.Delete("/tasks/:id", taskController.DeleteTask)

	admin.Post("/blog/categories", blogController.CreateCategory)
}
