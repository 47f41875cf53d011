package routes

import (
	panel_handlers "sofra.link/handlers/panel"

	"github.com/gofiber/fiber/v2"
)

// registerPanelRoutes /panel altındaki organizatör rotalarını tanımlar.
func registerPanelRoutes(app *fiber.App) {
	// Handler instance'larını başta oluştur
	eventHandler := panel_handlers.NewEventHandler()
	partyHandler := panel_handlers.NewPartyHandler()
	matchHandler := panel_handlers.NewMatchHandler()

	panelGroup := app.Group("/panel")

	// --- Etkinlikler ---
	panelGroup.Get("/events", eventHandler.ListEvents)                   // GET /panel/events
	panelGroup.Post("/events", eventHandler.CreateEvent)                 // POST /panel/events
	panelGroup.Get("/events/:id", eventHandler.GetEvent)                 // GET /panel/events/{id}
	panelGroup.Put("/events/:id", eventHandler.UpdateEvent)              // PUT /panel/events/{id}
	panelGroup.Delete("/events/:id", eventHandler.DeleteEvent)           // DELETE /panel/events/{id}
	panelGroup.Put("/events/:id/overrides", eventHandler.SetCourseOverride) // PUT /panel/events/{id}/overrides

	// --- Partiler ---
	panelGroup.Get("/events/:eventID/parties", partyHandler.ListParties)    // GET /panel/events/{eventID}/parties
	panelGroup.Post("/events/:eventID/parties", partyHandler.RegisterParty) // POST /panel/events/{eventID}/parties
	panelGroup.Get("/parties/:id", partyHandler.GetParty)                   // GET /panel/parties/{id}
	panelGroup.Put("/parties/:id", partyHandler.UpdateParty)                // PUT /panel/parties/{id}
	panelGroup.Post("/parties/:id/cancel", partyHandler.CancelParty)        // POST /panel/parties/{id}/cancel

	// --- Engelli Çiftler ---
	panelGroup.Get("/events/:eventID/blocked-pairs", partyHandler.ListBlockedPairs)  // GET /panel/events/{eventID}/blocked-pairs
	panelGroup.Post("/events/:eventID/blocked-pairs", partyHandler.AddBlockedPair)   // POST /panel/events/{eventID}/blocked-pairs
	panelGroup.Delete("/blocked-pairs/:id", partyHandler.RemoveBlockedPair)          // DELETE /panel/blocked-pairs/{id}

	// --- Eşleştirme ve Planlar ---
	panelGroup.Post("/events/:eventID/match", matchHandler.RunMatch)              // POST /panel/events/{eventID}/match
	panelGroup.Get("/plans/:planID", matchHandler.GetPlan)                        // GET /panel/plans/{planID}
	panelGroup.Post("/plans/:planID/publish", matchHandler.PublishPlan)           // POST /panel/plans/{planID}/publish
	panelGroup.Post("/plans/:planID/rematch", matchHandler.Rematch)               // POST /panel/plans/{planID}/rematch
	panelGroup.Post("/plans/:planID/refresh-schedules", matchHandler.RefreshSchedules) // POST /panel/plans/{planID}/refresh-schedules
	panelGroup.Post("/plans/:planID/cascade", matchHandler.ApplyCascade)          // POST /panel/plans/{planID}/cascade
}
