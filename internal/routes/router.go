package routes

import (
	"todo-sync/internal/controller"
	"todo-sync/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router mounts the todo API under /api plus the probe endpoints.
func Router(todos *controller.Todos, allowOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(allowOrigins))

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)
	router.GET("/ready", todos.Ready)

	api := router.Group("/api")
	{
		api.GET("/todos", todos.List)
		api.POST("/todos", todos.Create)
		api.PUT("/todos/:id", todos.Update)
		api.DELETE("/todos/:id", todos.Delete)
	}

	return router
}
