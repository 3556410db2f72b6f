package api

import (
	"net/http"

	"stabtrack/stability-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint on the router. Everything but
// registration, login and ping sits behind the JWT middleware.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	productService service.ProductService,
	taskService service.TaskService,
	templateService service.TemplateService,
	attachmentService service.AttachmentService,
) {
	authHandler := NewAuthHandler(authService)
	productHandler := NewProductHandler(productService)
	taskHandler := NewTaskHandler(taskService)
	templateHandler := NewTemplateHandler(templateService)
	attachmentHandler := NewAttachmentHandler(attachmentService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		productGroup := protected.Group("/products")
		{
			productGroup.POST("", productHandler.CreateProduct)
			productGroup.GET("", productHandler.GetProducts)
			productGroup.GET("/:id", productHandler.GetProduct)
			productGroup.GET("/:id/tasks", productHandler.GetProductTasks)
			productGroup.DELETE("/:id", productHandler.DeleteProduct)
		}

		taskGroup := protected.Group("/tasks")
		{
			taskGroup.GET("", taskHandler.GetTasks)
			taskGroup.GET("/deleted", taskHandler.GetDeletedTasks)
			taskGroup.GET("/calendar.ics", taskHandler.ExportCalendar)
			taskGroup.PATCH("/:id/completed", taskHandler.SetCompleted)
			taskGroup.DELETE("/:id", taskHandler.SoftDelete)
			taskGroup.POST("/:id/restore", taskHandler.Restore)
			taskGroup.DELETE("/:id/permanent", taskHandler.DeletePermanently)

			taskGroup.POST("/:id/attachments", attachmentHandler.RequestUpload)
			taskGroup.GET("/:id/attachments", attachmentHandler.GetTaskAttachments)
		}

		attachmentGroup := protected.Group("/attachments")
		{
			attachmentGroup.GET("/:id/download", attachmentHandler.GetDownloadURL)
			attachmentGroup.DELETE("/:id", attachmentHandler.DeleteAttachment)
		}

		scheduleTemplateGroup := protected.Group("/schedule-templates")
		{
			scheduleTemplateGroup.POST("", templateHandler.CreateScheduleTemplate)
			scheduleTemplateGroup.GET("", templateHandler.GetScheduleTemplates)
			scheduleTemplateGroup.GET("/presets", templateHandler.GetSchedulePresets)
			scheduleTemplateGroup.PUT("/:id", templateHandler.UpdateScheduleTemplate)
			scheduleTemplateGroup.DELETE("/:id", templateHandler.DeleteScheduleTemplate)
		}

		ftTemplateGroup := protected.Group("/ft-cycle-templates")
		{
			ftTemplateGroup.POST("", templateHandler.CreateFTCycleTemplate)
			ftTemplateGroup.GET("", templateHandler.GetFTCycleTemplates)
			ftTemplateGroup.PUT("/:id", templateHandler.UpdateFTCycleTemplate)
			ftTemplateGroup.DELETE("/:id", templateHandler.DeleteFTCycleTemplate)
		}
	}
}
