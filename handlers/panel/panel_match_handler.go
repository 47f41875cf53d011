package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/matching"
	"sofra.link/repositories"
	"sofra.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MatchHandler eşleştirme motoru işlemleri için handler (Panel).
type MatchHandler struct {
	matchService   services.IMatchService
	cascadeService services.ICascadeService
}

// NewMatchHandler yeni bir MatchHandler örneği oluşturur.
func NewMatchHandler() *MatchHandler {
	return &MatchHandler{
		matchService:   services.NewMatchService(),
		cascadeService: services.NewCascadeService(),
	}
}

// RunMatch etkinlik için tam eşleştirmeyi (Adım A + Adım B) çalıştırır ve
// yeni bir taslak plan oluşturur.
func (h *MatchHandler) RunMatch(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("eventID")
	if err != nil || eventID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz etkinlik ID")
	}

	plan, report, err := h.matchService.RunFullMatch(c.UserContext(), uint(eventID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrMatchEventDisabled):
			return jsonError(c, http.StatusConflict, err.Error())
		case errors.Is(err, matching.ErrTooFewParties), errors.Is(err, matching.ErrInsufficientCapacity):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			configslog.Log.Error("Panel - RunMatch", zap.Int("event_id", eventID), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "eşleştirme çalıştırılamadı")
		}
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"plan": plan, "report": report})
}

// Rematch yalnızca Adım B'yi yeniden çalıştırır; body'deki frozen_courses
// korunur.
func (h *MatchHandler) Rematch(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("planID")
	if err != nil || planID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz plan ID")
	}

	var body struct {
		FrozenCourses []models.Course `json:"frozen_courses"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, http.StatusBadRequest, "geçersiz istek gövdesi")
	}

	report, err := h.matchService.RunRematch(c.UserContext(), uint(planID), body.FrozenCourses)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMatchPlanNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrMatchPlanSuperseded), errors.Is(err, repositories.ErrVersionConflict):
			return jsonError(c, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrMatchInvalidFrozenSet):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			configslog.Log.Error("Panel - Rematch", zap.Int("plan_id", planID), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "yeniden eşleştirme çalıştırılamadı")
		}
	}
	return c.JSON(report)
}

// GetPlan planı atamaları, pairingleri ve zarflarıyla döner.
func (h *MatchHandler) GetPlan(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("planID")
	if err != nil || planID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz plan ID")
	}

	details, err := h.matchService.GetPlanDetails(c.UserContext(), uint(planID))
	if err != nil {
		if errors.Is(err, services.ErrMatchPlanNotFound) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - GetPlan", zap.Int("plan_id", planID), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "plan bilgileri alınamadı")
	}
	return c.JSON(details)
}

// PublishPlan planı yayınlar; etkinliğin önceki planları geçersiz kılınır.
func (h *MatchHandler) PublishPlan(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("planID")
	if err != nil || planID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz plan ID")
	}

	if err := h.matchService.PublishPlan(c.UserContext(), uint(planID)); err != nil {
		switch {
		case errors.Is(err, services.ErrMatchPlanNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrMatchPlanSuperseded):
			return jsonError(c, http.StatusConflict, err.Error())
		default:
			configslog.Log.Error("Panel - PublishPlan", zap.Int("plan_id", planID), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "plan yayınlanamadı")
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

// RefreshSchedules planın aktif zarf zamanlarını güncel yapılandırmadan
// yeniden türetir.
func (h *MatchHandler) RefreshSchedules(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("planID")
	if err != nil || planID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz plan ID")
	}

	updated, err := h.matchService.RefreshEnvelopeSchedules(c.UserContext(), uint(planID))
	if err != nil {
		if errors.Is(err, services.ErrMatchPlanNotFound) {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		configslog.Log.Error("Panel - RefreshSchedules", zap.Int("plan_id", planID), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "zarf zamanları yenilenemedi")
	}
	return c.JSON(fiber.Map{"envelopes_updated": updated})
}

// ApplyCascade plana tekil bir onarım mutasyonu uygular. Gövde "kind" alanı
// ile ayrıştırılır; her tür kendi alanlarını taşır.
func (h *MatchHandler) ApplyCascade(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("planID")
	if err != nil || planID <= 0 {
		return jsonError(c, http.StatusBadRequest, "geçersiz plan ID")
	}

	mutation, err := decodeCascadeMutation(c.Body())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.cascadeService.Apply(c.UserContext(), uint(planID), mutation)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMatchPlanNotFound):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrMatchPlanSuperseded), errors.Is(err, repositories.ErrVersionConflict):
			return jsonError(c, http.StatusConflict, err.Error())
		default:
			configslog.Log.Error("Panel - ApplyCascade", zap.Int("plan_id", planID), zap.Error(err))
			return jsonError(c, http.StatusInternalServerError, "mutasyon uygulanamadı")
		}
	}
	if !result.Success {
		return c.Status(http.StatusUnprocessableEntity).JSON(result)
	}
	return c.JSON(result)
}

// decodeCascadeMutation gövdeyi kind alanına göre ilgili varyanta çözer.
func decodeCascadeMutation(body []byte) (services.CascadeMutation, error) {
	var probe struct {
		Kind services.CascadeKind `json:"kind"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, errors.New("geçersiz istek gövdesi")
	}

	errBody := errors.New("geçersiz mutasyon gövdesi")
	switch probe.Kind {
	case services.CascadeGuestDropout:
		var m services.GuestDropout
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadeHostDropout:
		var m services.HostDropout
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadeResignHost:
		var m services.ResignHost
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadeAddressChange:
		var m services.AddressChange
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadeReassign:
		var m services.Reassign
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadeTransferHost:
		var m services.TransferHost
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadePromoteHost:
		var m services.PromoteHost
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	case services.CascadeSplitParty:
		var m services.SplitParty
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, errBody
		}
		return m, nil
	default:
		return nil, errors.New("bilinmeyen mutasyon türü")
	}
}
