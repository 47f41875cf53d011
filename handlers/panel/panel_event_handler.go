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

// EventHandler etkinlik yönetimi için handler (Panel).
type EventHandler struct {
	service services.IEventService
}

// NewEventHandler yeni bir EventHandler örneği oluşturur.
func NewEventHandler() *EventHandler {
	return &EventHandler{service: services.NewEventService()}
}

// ListEvents etkinlikleri sayfalı listeler.
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	result, err := h.service.GetEventsPaginated(c.UserContext(), params)
	if err != nil {
		configslog.Log.Error("Panel - ListEvents", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "etkinlikler listelenemedi")
	}
	return c.JSON(result)
}

// GetEvent tek bir etkinliği detaylarıyla döner.
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	event, err := h.service.GetEventByID(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - GetEvent", zap.Int("id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "etkinlik bilgileri alınamadı")
	}
	return c.JSON(event)
}

// CreateEvent yeni bir etkinlik oluşturur.
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var detail models.EventDetail
	if err := c.BodyParser(&detail); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}

	event, err := h.service.CreateEvent(c.UserContext(), detail)
	if err != nil {
		if isEventValidationError(err) {
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		}
		configslog.Log.Error("Panel - CreateEvent", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "etkinlik oluşturulamadı")
	}
	return c.Status(http.StatusCreated).JSON(event)
}

// UpdateEvent mevcut bir etkinliği günceller.
func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	var body struct {
		models.EventDetail
		IsEnabled bool `json:"is_enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}

	if err := h.service.UpdateEvent(c.UserContext(), uint(id), body.EventDetail, body.IsEnabled); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case isEventValidationError(err):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			configslog.Log.Error("Panel - UpdateEvent", zap.Int("id", id), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "etkinlik güncellenemedi")
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetCourseOverride bir etap için zamanlama override'ı kaydeder.
func (h *EventHandler) SetCourseOverride(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	var override models.CourseTimingOverride
	if err := c.BodyParser(&override); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}
	if !override.Course.Valid() {
		return jsonError(c, http.StatusUnprocessableEntity, "geçersiz etap")
	}

	if err := h.service.SetCourseOverride(c.UserContext(), uint(id), override); err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - SetCourseOverride", zap.Int("id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "zamanlama override kaydedilemedi")
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteEvent etkinliği siler (soft delete).
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	if err := h.service.DeleteEvent(c.UserContext(), uint(id)); err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - DeleteEvent", zap.Int("id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "etkinlik silinemedi")
	}
	return c.SendStatus(http.StatusNoContent)
}

// jsonError tek biçimli hata gövdesi döner.
func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func isEventValidationError(err error) bool {
	var serviceErr services.EventServiceError
	return errors.As(err, &serviceErr) && !errors.Is(err, services.ErrEventNotFound)
}
