package handlers

import (
	"errors"
	"net/http"

	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/queryparams"
	"sofra.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PartyHandler parti (katılımcı grubu) yönetimi için handler (Panel).
type PartyHandler struct {
	service services.IPartyService
}

// NewPartyHandler yeni bir PartyHandler örneği oluşturur.
func NewPartyHandler() *PartyHandler {
	return &PartyHandler{service: services.NewPartyService()}
}

// ListParties bir etkinliğin partilerini sayfalı listeler.
func (h *PartyHandler) ListParties(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("eventID")
	if err != nil || eventID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("name")
	}
	params.Validate()

	result, err := h.service.GetPartiesPaginated(c.UserContext(), uint(eventID), params)
	if err != nil {
		configslog.Log.Error("Panel - ListParties", zap.Int("event_id", eventID), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "partiler listelenemedi")
	}
	return c.JSON(result)
}

// GetParty tek bir partiyi döner.
func (h *PartyHandler) GetParty(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz parti ID")
	}

	party, err := h.service.GetPartyByID(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPartyNotFound) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - GetParty", zap.Int("id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "parti bilgileri alınamadı")
	}
	return c.JSON(party)
}

// RegisterParty bir etkinliğe yeni parti kaydeder.
func (h *PartyHandler) RegisterParty(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("eventID")
	if err != nil || eventID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	var party models.Party
	if err := c.BodyParser(&party); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}

	created, err := h.service.RegisterParty(c.UserContext(), uint(eventID), party)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case isPartyValidationError(err):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			configslog.Log.Error("Panel - RegisterParty", zap.Int("event_id", eventID), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "parti kaydedilemedi")
		}
	}
	return c.Status(http.StatusCreated).JSON(created)
}

// UpdateParty parti bilgilerini günceller. Adres değişikliği yayınlanmış plan
// zarflarını otomatik güncellemez; bunun için cascade address_change kullanılır.
func (h *PartyHandler) UpdateParty(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz parti ID")
	}

	var updates models.Party
	if err := c.BodyParser(&updates); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}

	if err := h.service.UpdateParty(c.UserContext(), uint(id), updates); err != nil {
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case isPartyValidationError(err):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			configslog.Log.Error("Panel - UpdateParty", zap.Int("id", id), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "parti güncellenemedi")
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

// CancelParty partiyi iptal olarak işaretler. Yayınlanmış plan üzerindeki
// onarım cascade guest_dropout / host_dropout ile ayrıca uygulanır.
func (h *PartyHandler) CancelParty(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz parti ID")
	}

	if err := h.service.CancelParty(c.UserContext(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrPartyAlreadyCancelled):
			return jsonError(c, http.StatusConflict, err.Error())
		default:
			configslog.Log.Error("Panel - CancelParty", zap.Int("id", id), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "parti iptal edilemedi")
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListBlockedPairs etkinliğin engelli çiftlerini listeler.
func (h *PartyHandler) ListBlockedPairs(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("eventID")
	if err != nil || eventID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	pairs, err := h.service.GetBlockedPairs(c.UserContext(), uint(eventID))
	if err != nil {
		configslog.Log.Error("Panel - ListBlockedPairs", zap.Int("event_id", eventID), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "engelli çiftler listelenemedi")
	}
	return c.JSON(pairs)
}

// AddBlockedPair iki partinin eşleşmesini engeller.
func (h *PartyHandler) AddBlockedPair(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("eventID")
	if err != nil || eventID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	var body struct {
		PartyAID uint   `json:"party_a_id"`
		PartyBID uint   `json:"party_b_id"`
		Reason   string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}

	pair, err := h.service.AddBlockedPair(c.UserContext(), uint(eventID), body.PartyAID, body.PartyBID, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrBlockedPairInvalid):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			configslog.Log.Error("Panel - AddBlockedPair", zap.Int("event_id", eventID), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "engelli çift eklenemedi")
		}
	}
	return c.Status(http.StatusCreated).JSON(pair)
}

// RemoveBlockedPair engeli kaldırır.
func (h *PartyHandler) RemoveBlockedPair(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz engel ID")
	}

	if err := h.service.RemoveBlockedPair(c.UserContext(), uint(id)); err != nil {
		if errors.Is(err, services.ErrBlockedPairInvalid) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - RemoveBlockedPair", zap.Int("id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "engelli çift silinemedi")
	}
	return c.SendStatus(http.StatusNoContent)
}

func isPartyValidationError(err error) bool {
	var serviceErr services.PartyServiceError
	return errors.As(err, &serviceErr) && !errors.Is(err, services.ErrPartyNotFound)
}
