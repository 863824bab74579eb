package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OpreaAngel-Freelance/oil/internal/controllers"
	"github.com/OpreaAngel-Freelance/oil/internal/middleware"
	"github.com/OpreaAngel-Freelance/oil/internal/ratelimit"
)

func SetupMappings(app *Application) {
	app.Engine.GET("/healthz", controllers.NewHealthController().Handle)
	app.Engine.GET("/readyz", controllers.NewReadyController(app.Repo).Handle)
	app.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	writeBucket := ratelimit.Bucket{
		RequestsPerMinute: app.Config.RateLimitWrite.RequestsPerMinute,
		BurstSize:         app.Config.RateLimitWrite.BurstSize,
	}

	oil := app.Engine.Group("/api/v1/oil", middleware.AuthMiddleware(app.Validator))
	{
		admin := oil.Group("", middleware.RequireRole("ROLE_ADMIN"))
		write := admin.Group("", middleware.RateLimitWrite(app.RateLimiter, writeBucket))

		write.POST("", controllers.NewCreateOilController(app.Oil).Handle)
		write.PUT("/:id", controllers.NewUpdateOilController(app.Oil).Handle)
		write.DELETE("/:id", controllers.NewDeleteOilController(app.Oil).Handle)
		admin.POST("/upload-url", controllers.NewUploadURLController(app.Oil).Handle)

		user := oil.Group("", middleware.RequireRole("ROLE_USER"))
		user.GET("", controllers.NewListOilController(app.Oil).Handle)
		user.GET("/:id", controllers.NewGetOilController(app.Oil).Handle)
	}
}
