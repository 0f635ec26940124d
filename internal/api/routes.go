package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/api/health", handler.Health)

	auth := app.Group("/api/auth")
	auth.Get("/validate-email", handler.ValidateEmail)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/refresh", handler.Refresh)

	plans := app.Group("/api/plans", handler.AuthRequired)
	plans.Post("/start", handler.StartPlan)
	plans.Get("", handler.ListPlans)
	plans.Get("/:id", handler.GetPlan)
	plans.Post("/:id/questionnaire", handler.SaveQuestionnaire)
	plans.Post("/:id/lab-results", handler.UploadLabResults)
	plans.Post("/:id/tcm", handler.SaveTCMObservations)
	plans.Post("/:id/timeline", handler.SaveTimeline)
	plans.Post("/:id/ifm-matrix", handler.SaveIFMMatrix)
	plans.Post("/:id/final", handler.SaveFinalPlan)
	plans.Post("/:id/generate", handler.GeneratePlan)
	plans.Get("/:id/export", handler.ExportPlan)

	admin := app.Group("/api/admin", handler.AuthRequired, handler.SuperadminOnly)
	admin.Get("/dashboard", handler.AdminDashboard)
	admin.Get("/companies", handler.ListCompanies)
	admin.Post("/companies", handler.CreateCompany)
	admin.Get("/companies/:id", handler.GetCompany)
	admin.Put("/companies/:id", handler.UpdateCompany)
	admin.Delete("/companies/:id", handler.DeleteCompany)
	admin.Get("/users", handler.ListUsers)
	admin.Post("/users", handler.CreateUser)
	admin.Get("/users/:id", handler.GetUser)
	admin.Put("/users/:id", handler.UpdateUser)
	admin.Delete("/users/:id", handler.DeleteUser)
	admin.Get("/prompts", handler.ListPrompts)
	admin.Get("/prompts/:id", handler.GetPrompt)
	admin.Put("/prompts/:id", handler.UpdatePrompt)
	admin.Get("/tokens/usage", handler.TokenUsageReport)
}
