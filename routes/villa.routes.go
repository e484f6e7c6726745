package routes

import (
	"github.com/gin-gonic/gin"

	"villa-booking-server/handlers"
)

type VillaRouteHandler struct {
	villaHandler handlers.VillaHandler
	authHandler  handlers.AuthHandler
}

func NewVillaRouteHandler(villaHandler handlers.VillaHandler, authHandler handlers.AuthHandler) VillaRouteHandler {
	return VillaRouteHandler{villaHandler, authHandler}
}

// VillaRoute registers the public villa endpoints.
func (rc *VillaRouteHandler) VillaRoute(rg *gin.RouterGroup) {
	router := rg.Group("/villa")

	router.GET("", rc.villaHandler.GetVilla)
	router.GET("/image", rc.villaHandler.GetImage)
}

// AdminVillaRoute registers the villa management endpoints behind the admin
// auth middleware.
func (rc *VillaRouteHandler) AdminVillaRoute(rg *gin.RouterGroup) {
	router := rg.Group("/villa")
	router.Use(rc.authHandler.AuthMiddleware())

	router.PUT("", rc.villaHandler.UpdateVilla)
	router.POST("/images", rc.villaHandler.UploadImage)
	router.DELETE("/images", rc.villaHandler.DeleteImage)
	router.POST("/qr", rc.villaHandler.UploadQR)
}
