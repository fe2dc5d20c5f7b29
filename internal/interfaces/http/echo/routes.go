package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, contactHandler *ContactHandler) {
	v1 := server.Group("/api/v1")

	v1.POST("/contacts/import", importHandler.ImportContacts)
	v1.POST("/contacts/import/file", importHandler.ImportContactsFile)

	v1.GET("/imports/jobs", importHandler.ListJobs)
	v1.GET("/imports/jobs/:id", importHandler.GetJob)
	v1.POST("/imports/jobs/:id/cancel", importHandler.CancelJob)

	v1.POST("/contacts", contactHandler.CreateContact)
	v1.GET("/contacts", contactHandler.ListContacts)
	v1.GET("/contacts/:id", contactHandler.GetContact)
	v1.PUT("/contacts/:id", contactHandler.UpdateContact)
	v1.DELETE("/contacts/:id", contactHandler.DeleteContact)

	v1.GET("/companies", contactHandler.ListCompanies)
}
