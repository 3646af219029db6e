package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/handler"
	"github.com/darsa-school/darsa-api/internal/middleware"
	"github.com/darsa-school/darsa-api/internal/observability"
	"github.com/darsa-school/darsa-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	PermissionHandler *handler.PermissionHandler
	AcademicsHandler  *handler.AcademicsHandler
	ScoreHandler      *handler.ScoreHandler
	AttendanceHandler *handler.AttendanceHandler
	DocumentHandler   *handler.DocumentHandler
	ActivityHandler   *handler.ActivityHandler
	HealthHandler     *handler.HealthHandler

	PermissionService service.PermissionService
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	if deps.HealthHandler != nil {
		app.Get("/health/live", deps.HealthHandler.Live)
		app.Get("/health/ready", deps.HealthHandler.Ready)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", deps.AuthHandler.Register)
	auth.Post("/login", deps.AuthHandler.Login)
	auth.Post("/refresh", deps.AuthHandler.Refresh)
	auth.Post("/logout", deps.AuthHandler.Logout)
	auth.Get("/me", jwtMiddleware, deps.AuthHandler.Me)
	auth.Patch("/me", jwtMiddleware, deps.AuthHandler.UpdateProfile)
	auth.Post("/change-password", jwtMiddleware, deps.AuthHandler.ChangePassword)

	staff := middleware.RequireRole(authz.RoleSuperAdmin, authz.RoleAdmin)
	superOnly := middleware.RequireRole(authz.RoleSuperAdmin)

	// Account management permissions depend on the target's role (students
	// versus teachers), so the grid checks live in the user service.
	users := api.Group("/users", jwtMiddleware)
	users.Get("/", staff, deps.UserHandler.List)
	users.Post("/", staff, deps.UserHandler.Create)
	users.Get("/pending", staff, middleware.RequirePermission(authz.PermApproveStudents, deps.PermissionService), deps.UserHandler.PendingStudents)
	users.Post("/expire-pending", staff, middleware.RequirePermission(authz.PermConfigureSystem, deps.PermissionService), deps.UserHandler.ExpirePending)
	users.Get("/:id", deps.UserHandler.Get)
	users.Post("/:id/approval", staff, deps.UserHandler.ApproveReject)
	users.Post("/:id/toggle-active", staff, deps.UserHandler.ToggleActive)
	users.Delete("/:id", staff, deps.UserHandler.Delete)

	permissions := api.Group("/permissions", jwtMiddleware, superOnly)
	permissions.Get("/", deps.PermissionHandler.List)
	permissions.Post("/", deps.PermissionHandler.Grant)
	permissions.Post("/bulk", deps.PermissionHandler.BulkUpdate)
	permissions.Get("/admin/:id", deps.PermissionHandler.ByAdmin)

	academics := api.Group("/academics", jwtMiddleware)
	manageSemesters := middleware.RequirePermission(authz.PermManageSemesters, deps.PermissionService)
	manageClasses := middleware.RequirePermission(authz.PermManageClasses, deps.PermissionService)
	manageSubjects := middleware.RequirePermission(authz.PermManageSubjects, deps.PermissionService)

	academics.Get("/semesters", deps.AcademicsHandler.ListSemesters)
	academics.Post("/semesters", staff, manageSemesters, deps.AcademicsHandler.CreateSemester)
	academics.Put("/semesters/:id", staff, manageSemesters, deps.AcademicsHandler.UpdateSemester)
	academics.Delete("/semesters/:id", staff, manageSemesters, deps.AcademicsHandler.DeleteSemester)

	academics.Get("/classes", deps.AcademicsHandler.ListClasses)
	academics.Post("/classes", staff, manageClasses, deps.AcademicsHandler.CreateClass)
	academics.Put("/classes/:id", staff, manageClasses, deps.AcademicsHandler.UpdateClass)
	academics.Delete("/classes/:id", staff, manageClasses, deps.AcademicsHandler.DeleteClass)

	academics.Get("/subjects", deps.AcademicsHandler.ListSubjects)
	academics.Post("/subjects", staff, manageSubjects, deps.AcademicsHandler.CreateSubject)
	academics.Put("/subjects/:id", staff, manageSubjects, deps.AcademicsHandler.UpdateSubject)
	academics.Delete("/subjects/:id", staff, manageSubjects, deps.AcademicsHandler.DeleteSubject)

	academics.Post("/students/:id/class", staff, manageClasses, deps.AcademicsHandler.AssignStudentClass)

	// Teachers and students act by role and are scoped inside the services;
	// admins need the matching grid grant.
	writeGrades := middleware.RequireRoleOrPermission(authz.PermEditGrades, deps.PermissionService, authz.RoleTeacher)
	viewGrades := middleware.RequireRoleOrPermission(authz.PermViewGrades, deps.PermissionService, authz.RoleTeacher, authz.RoleStudent)
	viewReports := middleware.RequireRoleOrPermission(authz.PermViewReports, deps.PermissionService, authz.RoleTeacher, authz.RoleStudent)
	markAttendance := middleware.RequireRoleOrPermission(authz.PermMarkAttendance, deps.PermissionService, authz.RoleTeacher)
	viewAttendance := middleware.RequireRoleOrPermission(authz.PermViewAttendance, deps.PermissionService, authz.RoleTeacher, authz.RoleStudent)

	scores := api.Group("/scores", jwtMiddleware)
	scores.Post("/", writeGrades, deps.ScoreHandler.Upsert)
	scores.Post("/bulk", writeGrades, deps.ScoreHandler.BulkCreate)
	scores.Get("/student/:id", viewGrades, deps.ScoreHandler.ByStudent)
	scores.Get("/student/:id/report", viewReports, deps.ScoreHandler.ReportCard)
	scores.Get("/subject/:id", middleware.RequireRoleOrPermission(authz.PermViewGrades, deps.PermissionService, authz.RoleTeacher), deps.ScoreHandler.BySubject)
	scores.Delete("/:id", staff, middleware.RequirePermission(authz.PermEditGrades, deps.PermissionService), deps.ScoreHandler.Delete)

	attendance := api.Group("/attendance", jwtMiddleware)
	attendance.Post("/students", markAttendance, deps.AttendanceHandler.MarkStudent)
	attendance.Post("/students/bulk", markAttendance, deps.AttendanceHandler.BulkMarkStudents)
	attendance.Post("/teachers", staff, middleware.RequirePermission(authz.PermMarkAttendance, deps.PermissionService), deps.AttendanceHandler.MarkTeacher)
	attendance.Get("/students", viewAttendance, deps.AttendanceHandler.ListStudent)
	attendance.Get("/students/:id/stats", viewReports, deps.AttendanceHandler.StudentStats)
	attendance.Get("/teachers", viewAttendance, deps.AttendanceHandler.ListTeacher)
	attendance.Get("/teachers/:id/stats", middleware.RequireRoleOrPermission(authz.PermViewReports, deps.PermissionService, authz.RoleTeacher), deps.AttendanceHandler.TeacherStats)

	viewDocuments := middleware.RequireRoleOrPermission(authz.PermViewDocuments, deps.PermissionService, authz.RoleTeacher, authz.RoleStudent)

	documents := api.Group("/documents", jwtMiddleware)
	documents.Post("/", middleware.RequireRoleOrPermission(authz.PermUploadDocuments, deps.PermissionService, authz.RoleTeacher, authz.RoleStudent), deps.DocumentHandler.Upload)
	documents.Get("/", viewDocuments, deps.DocumentHandler.List)
	documents.Get("/unverified", staff, middleware.RequirePermission(authz.PermViewDocuments, deps.PermissionService), deps.DocumentHandler.Unverified)
	documents.Get("/:id", viewDocuments, deps.DocumentHandler.Get)
	documents.Post("/:id/verify", staff, middleware.RequirePermission(authz.PermUploadDocuments, deps.PermissionService), deps.DocumentHandler.Verify)
	documents.Delete("/:id", staff, middleware.RequirePermission(authz.PermDeleteDocuments, deps.PermissionService), deps.DocumentHandler.Delete)

	activity := api.Group("/activity", jwtMiddleware, superOnly)
	activity.Get("/", deps.ActivityHandler.List)
}
