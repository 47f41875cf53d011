package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App) {
	// --- Genel Middleware'ler ---
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama

	// --- Rota Grupları ---
	registerPanelRoutes(app) // /panel rotaları (organizatör API'si)

	// --- Public Zarf Rotası ---
	// Diğer özel gruplardan sonra gelmeli
	registerEnvelopeRoutes(app)

	// --- 404 Handler ---
	// En sonda, eşleşmeyen tüm rotaları yakalar.
	app.Use(notFoundHandler)
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "kaynak bulunamadı"})
}
