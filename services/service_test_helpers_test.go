package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sofra.link/configs/configslog"
	"sofra.link/models"
)

// setupTestDB her test için izole bir in-memory SQLite bağlantısı açar ve
// şemayı kurar.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	configslog.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Event{}, &models.EventDetail{}, &models.CourseTimingOverride{},
		&models.Party{}, &models.BlockedPair{},
		&models.MatchPlan{}, &models.Assignment{}, &models.Pairing{},
		&models.Envelope{},
	))
	return db
}

// seedTestEvent altı partili etkin bir etkinlik oluşturur.
func seedTestEvent(t *testing.T, db *gorm.DB) (*models.Event, []models.Party) {
	t.Helper()

	base := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	event := models.Event{
		IsEnabled: true,
		Detail: models.EventDetail{
			Title:              "Test Etkinliği",
			EventDate:          base,
			StarterAt:          base,
			MainAt:             base.Add(2 * time.Hour),
			DessertAt:          base.Add(4 * time.Hour),
			SeatsPerHost:       6,
			TeasingLeadMin:     240,
			Clue1LeadMin:       120,
			Clue2LeadMin:       60,
			StreetLeadMin:      30,
			HouseNumberLeadMin: 15,
		},
	}
	require.NoError(t, db.Create(&event).Error)

	names := []string{"Yılmaz", "Demir", "Kaya", "Arslan", "Çelik", "Koç"}
	parties := make([]models.Party, 0, len(names))
	for i, name := range names {
		p := models.Party{
			EventID:     event.ID,
			Name:        name,
			Headcount:   2,
			Street:      "Test Sokak",
			HouseNumber: string(rune('1' + i)),
			Teasing:     "ipucu 0",
			Clue1:       "ipucu 1",
			Clue2:       "ipucu 2",
		}
		require.NoError(t, db.Create(&p).Error)
		parties = append(parties, p)
	}
	return &event, parties
}
