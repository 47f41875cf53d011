package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/repositories"
)

// revealBase tüm aşama zamanlarının etrafında kurulduğu sabit etap başlangıcı.
var revealBase = time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)

func setupEnvelopeApp(t *testing.T) (*fiber.App, *gorm.DB, *EnvelopeHandler) {
	t.Helper()
	configslog.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Party{}, &models.Envelope{}))

	h := &EnvelopeHandler{
		envRepo:   repositories.NewEnvelopeRepositoryTx(db),
		partyRepo: repositories.NewPartyRepositoryTx(db),
		now:       func() time.Time { return revealBase },
	}
	app := fiber.New()
	app.Get("/z/:key", h.ShowEnvelope)
	return app, db, h
}

// seedEnvelope etap başlangıcı revealBase olan, aşamaları 240/120/60/30/15
// dakika öncesine kurulu bir misafir zarfı yazar.
func seedEnvelope(t *testing.T, db *gorm.DB) *models.Envelope {
	t.Helper()
	host := models.Party{
		EventID: 1,
		Name:    "Demir Ailesi",
	}
	require.NoError(t, db.Create(&host).Error)

	env := models.Envelope{
		PlanID:          1,
		PartyID:         host.ID + 100,
		Course:          models.CourseMain,
		Key:             uuid.NewString(),
		HostPartyID:     host.ID,
		DestStreet:      "Kuzguncuk İcadiye Caddesi",
		DestHouseNumber: "12",
		Teasing:         "Boğaz manzarası olabilir...",
		Clue1:           "Anadolu yakasındasınız",
		Clue2:           "Rengarenk sokaklar",
		TeasingAt:       revealBase.Add(-240 * time.Minute),
		Clue1At:         revealBase.Add(-120 * time.Minute),
		Clue2At:         revealBase.Add(-60 * time.Minute),
		StreetAt:        revealBase.Add(-30 * time.Minute),
		HouseNumberAt:   revealBase.Add(-15 * time.Minute),
		OpensAt:         revealBase,
		Status:          models.EnvelopeStatusActive,
	}
	require.NoError(t, db.Create(&env).Error)
	return &env
}

func getView(t *testing.T, app *fiber.App, key string) (int, EnvelopeView) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/z/"+key, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var view EnvelopeView
	require.NoError(t, json.Unmarshal(body, &view))
	return resp.StatusCode, view
}

func TestShowEnvelope_FullyOpen(t *testing.T) {
	app, db, _ := setupEnvelopeApp(t)
	env := seedEnvelope(t, db)

	status, view := getView(t, app, env.Key)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.CourseMain, view.Course)
	assert.Equal(t, env.Teasing, view.Teasing)
	assert.Equal(t, env.Clue1, view.Clue1)
	assert.Equal(t, env.Clue2, view.Clue2)
	assert.Equal(t, env.DestStreet, view.Street)
	assert.Equal(t, env.DestHouseNumber, view.HouseNumber)
	assert.Equal(t, "Demir Ailesi", view.HostName)
	assert.Nil(t, view.NextRevealAt, "tamamen açık zarfta sıradaki aşama olmamalı")
}

func TestShowEnvelope_StagedReveal(t *testing.T) {
	app, db, h := setupEnvelopeApp(t)
	env := seedEnvelope(t, db)

	// İkinci ipucu açılmış, sokak henüz kapalı
	h.now = func() time.Time { return revealBase.Add(-45 * time.Minute) }

	status, view := getView(t, app, env.Key)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, env.Teasing, view.Teasing)
	assert.Equal(t, env.Clue1, view.Clue1)
	assert.Equal(t, env.Clue2, view.Clue2)
	assert.Empty(t, view.Street)
	assert.Empty(t, view.HouseNumber)
	assert.Empty(t, view.HostName)
	require.NotNil(t, view.NextRevealAt)
	assert.True(t, view.NextRevealAt.Equal(env.StreetAt))
}

func TestShowEnvelope_BeforeFirstStage(t *testing.T) {
	app, db, h := setupEnvelopeApp(t)
	env := seedEnvelope(t, db)

	h.now = func() time.Time { return revealBase.Add(-5 * time.Hour) }

	status, view := getView(t, app, env.Key)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, view.Teasing)
	assert.Empty(t, view.Street)
	require.NotNil(t, view.NextRevealAt)
	assert.True(t, view.NextRevealAt.Equal(env.TeasingAt))
}

func TestShowEnvelope_CancelledLeaksNothing(t *testing.T) {
	app, db, _ := setupEnvelopeApp(t)
	env := seedEnvelope(t, db)
	require.NoError(t, db.Model(env).Update("status", models.EnvelopeStatusCancelled).Error)

	status, view := getView(t, app, env.Key)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(models.EnvelopeStatusCancelled), view.Status)
	assert.Empty(t, view.Teasing)
	assert.Empty(t, view.Clue1)
	assert.Empty(t, view.Street)
	assert.Empty(t, view.HouseNumber)
	assert.Empty(t, view.HostName)
	assert.Nil(t, view.NextRevealAt)
}

func TestShowEnvelope_UnknownKey(t *testing.T) {
	app, _, _ := setupEnvelopeApp(t)

	status, _ := getView(t, app, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, status)
}

func TestShowEnvelope_MalformedKey(t *testing.T) {
	app, db, _ := setupEnvelopeApp(t)
	seedEnvelope(t, db)

	status, _ := getView(t, app, "kisa-anahtar")
	assert.Equal(t, http.StatusNotFound, status)
}
