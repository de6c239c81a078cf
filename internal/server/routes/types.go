package routes

import (
	"github.com/h190k/formrelay/internal/api/handlers"
	"github.com/h190k/formrelay/internal/api/middleware"
)

// Handlers contains all the route handlers
type Handlers struct {
	Health *handlers.HealthHandler
	Forms  *handlers.FormsHandler
	Submit *handlers.SubmitHandler
}

// Middleware contains the per-route middleware
type Middleware struct {
	Validation *middleware.ValidationMiddleware
}
