package handler

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the roster API on e.
func RegisterRoutes(e *echo.Echo, interns *InternHandler, imports *ImportHandler, batches *BatchHandler) {
	internGroup := e.Group("/interns")
	internGroup.GET("", interns.ListHandler)
	internGroup.POST("", interns.CreateHandler)
	internGroup.GET("/new", interns.NewHandler)
	internGroup.GET("/search", interns.SearchHandler)
	internGroup.GET("/export", interns.ExportHandler)
	internGroup.GET("/:id", interns.GetHandler)
	internGroup.PUT("/:id", interns.UpdateHandler)
	internGroup.DELETE("/:id", interns.DeleteHandler)
	internGroup.POST("/import", imports.ImportHandler)
	internGroup.POST("/import/report", imports.ReportHandler)

	e.GET("/imports", imports.RunsHandler)
	e.GET("/imports/:run_id", imports.RunHandler)

	batchGroup := e.Group("/batches")
	batchGroup.GET("", batches.ListHandler)
	batchGroup.POST("", batches.CreateHandler)
	batchGroup.GET("/:id", batches.GetHandler)
	batchGroup.PUT("/:id", batches.UpdateHandler)
	batchGroup.DELETE("/:id", batches.DeleteHandler)
}
