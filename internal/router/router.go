package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/urquest/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Organization *apiHandler.OrganizationHandler
	Role         *apiHandler.RoleHandler
	Task         *apiHandler.TaskHandler
	Submission   *apiHandler.SubmissionHandler
	Profile      *apiHandler.ProfileHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Public reads
	r.GET("/api/v1/tasks", handlers.Task.ListOpen)
	r.GET("/api/v1/tasks/{id}", handlers.Task.Get)
	r.GET("/api/v1/leaderboard", handlers.Profile.Leaderboard)

	// Profiles
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.GET("/api/v1/users/{id}/profile", authMiddleware(handlers.Profile.GetUserProfile))

	// Organizations
	r.POST("/api/v1/orgs", authMiddleware(handlers.Organization.Create))
	r.GET("/api/v1/orgs/{id}", authMiddleware(handlers.Organization.Get))
	r.PATCH("/api/v1/orgs/{id}", authMiddleware(handlers.Organization.Update))
	r.POST("/api/v1/orgs/{id}/join", authMiddleware(handlers.Organization.Join))
	r.POST("/api/v1/orgs/{id}/leave", authMiddleware(handlers.Organization.Leave))
	r.POST("/api/v1/orgs/{id}/transfer", authMiddleware(handlers.Organization.Transfer))
	r.GET("/api/v1/orgs/{id}/members", authMiddleware(handlers.Organization.Members))
	r.GET("/api/v1/orgs/{id}/stats", authMiddleware(handlers.Organization.Stats))

	// Roles
	r.GET("/api/v1/orgs/{id}/roles", authMiddleware(handlers.Role.List))
	r.POST("/api/v1/orgs/{id}/roles", authMiddleware(handlers.Role.Create))
	r.POST("/api/v1/orgs/{id}/roles/assign", authMiddleware(handlers.Role.Assign))
	r.PUT("/api/v1/roles/{id}", authMiddleware(handlers.Role.Update))
	r.DELETE("/api/v1/roles/{id}", authMiddleware(handlers.Role.Delete))

	// Tasks and review workflow
	r.POST("/api/v1/orgs/{id}/tasks", authMiddleware(handlers.Task.Create))
	r.POST("/api/v1/tasks/{id}/submissions", authMiddleware(handlers.Submission.Submit))
	r.GET("/api/v1/orgs/{id}/submissions/pending", authMiddleware(handlers.Submission.Pending))
	r.POST("/api/v1/submissions/{id}/review", authMiddleware(handlers.Submission.Review))

	return r
}
