package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
	"villa-booking-server/utils"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	admins    domain.AdminStore
	jwtSecret string
	Tracer    trace.Tracer
	logger    *logrus.Logger
}

func NewAuthHandler(admins domain.AdminStore, jwtSecret string, tracer trace.Tracer, logger *logrus.Logger) AuthHandler {
	return AuthHandler{
		admins:    admins,
		jwtSecret: jwtSecret,
		Tracer:    tracer,
		logger:    logger,
	}
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) Login(ctx *gin.Context) {
	spanCtx, span := ah.Tracer.Start(ctx.Request.Context(), "AuthHandler.Login")
	defer span.End()

	var input loginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Email and password are required"})
		return
	}

	admin, err := ah.admins.FindByEmail(spanCtx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid credentials"})
		return
	}
	if err := utils.VerifyPassword(admin.Password, input.Password); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid credentials"})
		return
	}

	token, err := utils.CreateToken(admin.ID.Hex(), admin.Email, ah.jwtSecret, tokenTTL)
	if err != nil {
		ah.logger.Error("Could not create token: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not create token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"token": token, "admin": admin}})
}

type registerInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (ah *AuthHandler) Register(ctx *gin.Context) {
	spanCtx, span := ah.Tracer.Start(ctx.Request.Context(), "AuthHandler.Register")
	defer span.End()

	var input registerInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Email and a password of at least 8 characters are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.ValidateEmail(email) {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid email format"})
		return
	}

	if _, err := ah.admins.FindByEmail(spanCtx, email); err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"status": "error", "message": "Admin already exists"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		ah.logger.Error("Could not hash password: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not register admin"})
		return
	}

	admin := &domain.Admin{
		Email:     email,
		Password:  hash,
		Role:      "admin",
		CreatedAt: time.Now(),
	}
	created, err := ah.admins.Insert(spanCtx, admin)
	if err != nil {
		ah.logger.Error("Could not insert admin: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not register admin"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"admin": created}})
}

func (ah *AuthHandler) Profile(ctx *gin.Context) {
	spanCtx, span := ah.Tracer.Start(ctx.Request.Context(), "AuthHandler.Profile")
	defer span.End()

	adminID := ctx.GetString("adminID")
	admin, err := ah.admins.FindByID(spanCtx, adminID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"admin": admin}})
}

// AuthMiddleware validates the bearer token and stores the admin identity on
// the request context.
func (ah *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Missing or invalid authorization header"})
			return
		}

		claims, err := utils.ValidateToken(strings.TrimPrefix(header, "Bearer "), ah.jwtSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token"})
			return
		}

		ctx.Set("adminID", claims.AdminID)
		ctx.Set("adminEmail", claims.Email)
		ctx.Next()
	}
}
