package handlers

import (
	"errors"
	"net/http"
	"time"

	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EnvelopeHandler public zarf açılış isteklerini yönetir. Her zarf anahtarı
// tahmin edilemez bir UUID'dir; kimlik doğrulama gerektirmez.
type EnvelopeHandler struct {
	envRepo   repositories.IEnvelopeRepository
	partyRepo repositories.IPartyRepository

	// now testlerde sabitlenebilir
	now func() time.Time
}

// NewEnvelopeHandler yeni bir EnvelopeHandler örneği oluşturur.
func NewEnvelopeHandler() *EnvelopeHandler {
	return &EnvelopeHandler{
		envRepo:   repositories.NewEnvelopeRepository(),
		partyRepo: repositories.NewPartyRepository(),
		now:       time.Now,
	}
}

// EnvelopeView zarfın o anki açılış durumuna göre görünen alanları. Zamanı
// gelmemiş alanlar hiç serileştirilmez; istemci tarafı gizleme yoktur.
type EnvelopeView struct {
	Course models.Course `json:"course"`
	IsHost bool          `json:"is_host"`
	Status string        `json:"status"`

	Teasing     string `json:"teasing,omitempty"`
	Clue1       string `json:"clue1,omitempty"`
	Clue2       string `json:"clue2,omitempty"`
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	HostName    string `json:"host_name,omitempty"`

	OpensAt      time.Time  `json:"opens_at"`
	NextRevealAt *time.Time `json:"next_reveal_at,omitempty"`
}

// ShowEnvelope :key parametresindeki zarfı o anki aşamasına göre döner.
// Açılış zamanı gelmemiş alanlar sunucu tarafında tutulur; iptal edilmiş
// zarflar içerik sızdırmadan durumlarını bildirir.
func (h *EnvelopeHandler) ShowEnvelope(c *fiber.Ctx) error {
	key := c.Params("key")
	if len(key) != 36 {
		configslog.SLog.Warnf("Geçersiz formatta zarf anahtarı denendi: %s", key)
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "zarf bulunamadı"})
	}

	ctx := c.UserContext()
	envelope, err := h.envRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "zarf bulunamadı"})
		}
		configslog.Log.Error("ShowEnvelope: FindByKey", zap.String("key", key), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "zarf bilgileri alınamadı"})
	}

	view := EnvelopeView{
		Course:  envelope.Course,
		IsHost:  envelope.IsHost,
		Status:  string(envelope.Status),
		OpensAt: envelope.OpensAt,
	}
	if !envelope.IsActiveEnvelope() {
		return c.JSON(view)
	}

	now := h.now()
	if !now.Before(envelope.TeasingAt) {
		view.Teasing = envelope.Teasing
	}
	if !now.Before(envelope.Clue1At) {
		view.Clue1 = envelope.Clue1
	}
	if !now.Before(envelope.Clue2At) {
		view.Clue2 = envelope.Clue2
	}
	if !now.Before(envelope.StreetAt) {
		view.Street = envelope.DestStreet
	}
	if !now.Before(envelope.HouseNumberAt) {
		view.HouseNumber = envelope.DestHouseNumber
	}
	if !now.Before(envelope.OpensAt) {
		host, hostErr := h.partyRepo.FindByID(ctx, envelope.HostPartyID)
		if hostErr == nil {
			view.HostName = host.Name
		}
	}
	view.NextRevealAt = nextReveal(envelope, now)

	return c.JSON(view)
}

// nextReveal zamanı henüz gelmemiş ilk aşamayı döner; tamamen açılmışsa nil.
func nextReveal(e *models.Envelope, now time.Time) *time.Time {
	stages := []time.Time{e.TeasingAt, e.Clue1At, e.Clue2At, e.StreetAt, e.HouseNumberAt, e.OpensAt}
	for _, at := range stages {
		if now.Before(at) {
			t := at
			return &t
		}
	}
	return nil
}
