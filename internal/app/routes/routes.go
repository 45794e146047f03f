package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/uniportal/internal/app/controllers"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/ratelimit"
)

// Controllers groups every HTTP handler set mounted under /api/v1
type Controllers struct {
	Auth          *controllers.AuthController
	Password      *controllers.PasswordController
	Students      *controllers.StudentController
	Programs      *controllers.ProgramController
	Finance       *controllers.FinanceController
	Units         *controllers.UnitController
	Notifications *controllers.NotificationController
	Audit         *controllers.AuditController
}

var (
	studentAdmins  = []models.RoleType{models.RoleRegistrar, models.RoleAdmin}
	financeAdmins  = []models.RoleType{models.RoleFinance, models.RoleAdmin}
	unitAssigners  = []models.RoleType{models.RoleHOD, models.RoleDean, models.RoleAdmin}
	auditReaders   = []models.RoleType{models.RoleAdmin, models.RoleDean}
	userAdmins     = []models.RoleType{models.RoleAdmin}
	portalReaders  = models.StaffRoles
	unitRegistrars = []models.RoleType{models.RoleRegistrar, models.RoleAdmin}
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, limiter ratelimit.Limiter) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/catalog/aliases", c.Programs.GetAliases)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimit(limiter, "login"), c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)

		password := auth.Group("/password")
		password.Use(middleware.RateLimit(limiter, "password"))
		{
			password.POST("/forgot", c.Password.ForgotPassword)
			password.POST("/verify-otp", c.Password.VerifyOTP)
			password.POST("/reset", c.Password.ResetPassword)
		}
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/me", c.Auth.GetProfile)
	authenticated.PATCH("/auth/password", c.Auth.ChangePassword)
	authenticated.POST("/users", authMiddleware.RoleRequired(userAdmins...), c.Auth.CreateUser)
	authenticated.GET("/catalog/resolve", c.Programs.ResolveCost)

	programs := authenticated.Group("/programs")
	{
		programs.GET("", c.Programs.GetPrograms)
		programs.GET("/:id", c.Programs.GetProgram)
		programs.POST("", authMiddleware.RoleRequired(financeAdmins...), c.Programs.CreateProgram)
		programs.PATCH("/:id/cost", authMiddleware.RoleRequired(financeAdmins...), c.Programs.UpdateProgramCost)
	}

	students := authenticated.Group("/students")
	{
		students.POST("", authMiddleware.RoleRequired(studentAdmins...), c.Students.CreateStudent)
		students.GET("", authMiddleware.RoleRequired(portalReaders...), c.Students.GetStudents)

		// A student reaches only their own portal; staff reach everyone's.
		self := authMiddleware.SelfOrRoles("admissionNumber", portalReaders...)
		students.GET("/:admissionNumber", self, c.Students.GetStudent)
		students.GET("/:admissionNumber/payments", self, c.Finance.GetPayments)
		students.GET("/:admissionNumber/eligibility", self, c.Finance.GetEligibility)
		students.GET("/:admissionNumber/unit-registrations", self, c.Units.GetRegistrations)
		students.POST("/:admissionNumber/unit-registrations",
			authMiddleware.SelfOrRoles("admissionNumber", unitRegistrars...), c.Units.RegisterUnit)

		students.PATCH("/:admissionNumber", authMiddleware.RoleRequired(studentAdmins...), c.Students.UpdateStudent)
		students.POST("/:admissionNumber/deactivate", authMiddleware.RoleRequired(studentAdmins...), c.Students.DeactivateStudent)
		students.POST("/:admissionNumber/payments", authMiddleware.RoleRequired(financeAdmins...), c.Finance.RecordPayment)
	}

	assignments := authenticated.Group("/unit-assignments")
	{
		assignments.GET("", authMiddleware.RoleRequired(append([]models.RoleType{models.RoleTrainer}, unitAssigners...)...), c.Units.GetAssignments)
		assignments.POST("", authMiddleware.RoleRequired(unitAssigners...), c.Units.AssignUnit)
		assignments.DELETE("/:id", authMiddleware.RoleRequired(unitAssigners...), c.Units.UnassignUnit)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notifications.GetNotifications)
		notifications.PATCH("/read-all", c.Notifications.MarkAllRead)
		notifications.PATCH("/:id/read", c.Notifications.MarkRead)
		notifications.POST("", authMiddleware.RoleRequired(portalReaders...), c.Notifications.CreateNotification)
	}

	authenticated.GET("/audit-logs", authMiddleware.RoleRequired(auditReaders...), c.Audit.GetAuditLogs)
}
