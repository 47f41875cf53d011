package routes

import (
	link_handlers "sofra.link/handlers/link"

	"github.com/gofiber/fiber/v2"
)

// registerEnvelopeRoutes public zarf açılış rotasını tanımlar. Anahtar
// tahmin edilemez bir UUID'dir; rota kimlik doğrulama gerektirmez.
func registerEnvelopeRoutes(app *fiber.App) {
	envelopeHandler := link_handlers.NewEnvelopeHandler()

	// Bu rota diğer özel rotalardan (örn. /panel) SONRA tanımlanmalı.
	app.Get("/z/:key", envelopeHandler.ShowEnvelope)
}
