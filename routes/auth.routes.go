package routes

import (
	"github.com/gin-gonic/gin"

	"villa-booking-server/handlers"
)

type AuthRouteHandler struct {
	authHandler handlers.AuthHandler
}

func NewAuthRouteHandler(authHandler handlers.AuthHandler) AuthRouteHandler {
	return AuthRouteHandler{authHandler}
}

func (rc *AuthRouteHandler) AuthRoute(rg *gin.RouterGroup) {
	router := rg.Group("/auth")

	router.POST("/login", rc.authHandler.Login)
	router.POST("/register", rc.authHandler.Register)
	router.GET("/profile", rc.authHandler.AuthMiddleware(), rc.authHandler.Profile)
}
