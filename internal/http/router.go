package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"royal-villa/internal/domain"
	"royal-villa/internal/response"
	"royal-villa/internal/service"
)

const requestIDHeader = "X-Request-ID"

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	signer *service.TokenSigner,
	authH *AuthHandler,
	villaH *VillaHandler,
	amenityH *AmenityHandler,
) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), recoveryMiddleware(logger), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		respond(c, response.Ok("ok", gin.H{"status": "up"}))
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	requireAuth := JWTAuthMiddleware(signer)
	villa := api.Group("/villa")
	villa.GET("", requireAuth, RequireRoles(domain.RoleAdmin), villaH.List)
	villa.GET("/:id", villaH.Get)
	villa.POST("", requireAuth, RequireRoles(domain.RoleCustomer, domain.RoleAdmin), villaH.Create)
	villa.PUT("/:id", requireAuth, RequireRoles(domain.RoleCustomer, domain.RoleAdmin), villaH.Update)
	villa.DELETE("/:id", requireAuth, RequireRoles(domain.RoleCustomer, domain.RoleAdmin), villaH.Delete)

	amenities := api.Group("/villa-amenities")
	amenities.GET("", amenityH.List)
	amenities.GET("/:id", amenityH.Get)
	amenities.POST("", amenityH.Create)
	amenities.PUT("/:id", amenityH.Update)
	amenities.DELETE("/:id", amenityH.Delete)

	r.NoRoute(func(c *gin.Context) {
		respond(c, response.NotFound(fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path)))
	})

	return r
}

// requestIDMiddleware propaga X-Request-ID o genera uno nuevo.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDHeader)),
		)
	}
}

// recoveryMiddleware convierte panics en un envelope 500.
func recoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDHeader)),
		)
		abortWith(c, response.Error(http.StatusInternalServerError, "An unexpected error occurred", fmt.Sprint(recovered)))
	})
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
