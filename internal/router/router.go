package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskvault/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.SignUp)
	r.POST("/api/v1/auth/signin", handlers.Auth.SignIn)

	// Task routes: owner-scoped, identity verified before any handler runs
	r.GET("/api/v1/users/{owner}/tasks", authMiddleware(handlers.Task.ListTasks))
	r.POST("/api/v1/users/{owner}/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/users/{owner}/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/users/{owner}/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/users/{owner}/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.PATCH("/api/v1/users/{owner}/tasks/{id}/complete", authMiddleware(handlers.Task.ToggleComplete))

	return r
}
