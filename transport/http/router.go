package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/passgate/passgate/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(sessions *service.SessionService, handlers *SessionHandlers, cookies CookiePolicy) *gin.Engine {
	router := gin.Default()

	load := LoadSession(sessions, cookies)

	router.POST("/login", handlers.Login)
	router.POST("/login/start", handlers.LoginStart)
	router.GET("/user", load, handlers.User)
	router.GET("/logout", load, RequireSession(), handlers.Logout)

	router.GET("/healthz", handlers.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
