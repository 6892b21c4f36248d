package http

import "github.com/gin-gonic/gin"

// Register mounts the handlers on router.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/services", h.ListServices)
	router.POST("/services/execute", h.ExecuteService)
}
