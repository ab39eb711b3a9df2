package routes

import (
	"log"
	"os"

	controller "taskboard/controllers"
	"taskboard/middleware"
	"taskboard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, cache *utils.Cache) {
	// Initialize controllers with their respective loggers
	workspaceController := controller.NewWorkspaceController(db, log.New(os.Stdout, "WORKSPACE: ", log.LstdFlags), cache)
	memberController := controller.NewMemberController(db, log.New(os.Stdout, "MEMBER: ", log.LstdFlags))
	projectController := controller.NewProjectController(db, log.New(os.Stdout, "PROJECT: ", log.LstdFlags), cache)
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags), cache)
	analyticsController := controller.NewAnalyticsController(db, log.New(os.Stdout, "ANALYTICS: ", log.LstdFlags), cache)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Workspace routes
	workspace := api.Group("/workspaces")
	workspace.Get("/", workspaceController.GetWorkspaces)
	workspace.Post("/", workspaceController.CreateWorkspace)
	workspace.Get("/:id", workspaceController.GetWorkspace)
	workspace.Get("/:id/info", workspaceController.GetWorkspaceInfo)
	workspace.Patch("/:id", workspaceController.UpdateWorkspace)
	workspace.Delete("/:id", workspaceController.DeleteWorkspace)
	workspace.Post("/:id/reset-invite-code", workspaceController.ResetInviteCode)
	workspace.Post("/:id/join", middleware.JoinRateLimiter(), workspaceController.JoinWorkspace)
	workspace.Get("/:id/analytics", analyticsController.GetWorkspaceAnalytics)
	workspace.Get("/:id/members", memberController.GetMembers)

	// Member routes
	member := api.Group("/members")
	member.Patch("/:id", memberController.UpdateMember)
	member.Delete("/:id", memberController.DeleteMember)

	// Project routes
	project := api.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:id", projectController.GetProject)
	project.Patch("/:id", projectController.UpdateProject)
	project.Delete("/:id", projectController.DeleteProject)
	project.Get("/:id/analytics", analyticsController.GetProjectAnalytics)

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", taskController.CreateTask)
	task.Get("/", taskController.GetTasks)
	task.Get("/:id", taskController.GetTask)
	task.Patch("/:id", taskController.UpdateTask)
	task.Delete("/:id", taskController.DeleteTask)
	task.Post("/:id/move", taskController.MoveTask)
	task.Post("/bulk-update", taskController.BulkUpdateTasks)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cache *utils.Cache) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db, cache)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
