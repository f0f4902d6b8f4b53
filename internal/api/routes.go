package api

import (
	"strings"

	"github.com/cicbolivia/portal/internal/guard"
	"github.com/cicbolivia/portal/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the portal
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.HealthCheck)
	app.Get(guard.DefaultLoginPath, h.Login)

	// News views
	noticias := app.Group("/noticias")
	{
		noticias.Get("", h.GetNews)
		noticias.Get("/:id", h.GetNewsByID)
	}

	// Fee calculator
	calc := app.Group("/aranceles")
	{
		calc.Get("/opciones", h.GetFeeOptions)
		calc.Post("/calcular", h.CalculateFee)
		calc.Get("/resumen", middleware.ValidateQuery[summaryQuery](), h.GetSummary)
	}

	// Admin area, gated on token presence
	admin := app.Group("/admin", guard.New())
	{
		admin.Get("", h.AdminDashboard)
		admin.Get("/estadisticas", guard.RequirePermission(guard.PermAdminAccess), h.AdminStats)
		for _, s := range dashboardSections {
			admin.Get(strings.TrimPrefix(s.Path, "/admin"),
				guard.RequirePermission(guard.PermAdminAccess, s.Permission),
				h.AdminSection(s))
		}
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Ruta no encontrada",
		})
	})
}
