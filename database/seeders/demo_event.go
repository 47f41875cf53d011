package seeders

import (
	"errors"
	"fmt"
	"time"

	"sofra.link/configs/configslog"
	"sofra.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const demoEventTitle = "Gezen Sofra Demo Akşamı"

// SeedDemoEvent altı partili örnek bir etkinlik oluşturur. Başlık üzerinden
// idempotenttir: kayıt varsa hiçbir şey yapılmaz.
func SeedDemoEvent(db *gorm.DB) error {
	var existing models.EventDetail
	result := db.Where("title = ?", demoEventTitle).First(&existing)
	if result.Error == nil {
		configslog.SLog.Debugf("Demo etkinlik '%s' zaten mevcut, oluşturma atlanıyor.", demoEventTitle)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Demo etkinlik kontrol edilirken veritabanı hatası", zap.Error(result.Error))
		return result.Error
	}

	eventDate := time.Now().AddDate(0, 0, 30).Truncate(24 * time.Hour)
	event := models.Event{
		IsEnabled: true,
		Detail: models.EventDetail{
			Title:              demoEventTitle,
			Description:        "Üç etaplı gezen sofra: her parti bir etaba ev sahipliği yapar.",
			EventDate:          eventDate,
			City:               "İstanbul",
			StarterAt:          eventDate.Add(18 * time.Hour),
			MainAt:             eventDate.Add(20 * time.Hour),
			DessertAt:          eventDate.Add(22 * time.Hour),
			SeatsPerHost:       6,
			TeasingLeadMin:     240,
			Clue1LeadMin:       120,
			Clue2LeadMin:       60,
			StreetLeadMin:      30,
			HouseNumberLeadMin: 15,
		},
	}

	configslog.SLog.Infof("Demo etkinlik '%s' oluşturuluyor...", demoEventTitle)
	if err := db.Create(&event).Error; err != nil {
		configslog.Log.Error("Demo etkinlik oluşturulamadı", zap.Error(err))
		return err
	}

	starter := models.CourseStarter
	dessert := models.CourseDessert
	parties := []models.Party{
		{EventID: event.ID, Name: "Yılmaz Ailesi", Email: "yilmaz@example.com", Headcount: 2,
			Street: "Fıstıkağacı Sokak", HouseNumber: "12", CoursePreference: &starter,
			Teasing: "Boğaz manzaralı bir sürpriz", Clue1: "Denize yakınız", Clue2: "Köşedeki fırının karşısı"},
		{EventID: event.ID, Name: "Demir Ailesi", Email: "demir@example.com", Headcount: 2,
			Street: "Kuzguncuk Caddesi", HouseNumber: "34",
			Teasing: "Bahçeli bir ev", Clue1: "Renkli cumbalar", Clue2: "Asmalı kapı"},
		{EventID: event.ID, Name: "Kaya Çifti", Email: "kaya@example.com", Headcount: 2,
			Street: "İcadiye Yokuşu", HouseNumber: "7", CoursePreference: &dessert,
			Teasing: "Tatlı krizine hazır olun", Clue1: "Yokuşun ortası", Clue2: "Yeşil panjurlar"},
		{EventID: event.ID, Name: "Arslan Ailesi", Email: "arslan@example.com", Headcount: 2,
			Street: "Paşalimanı Caddesi", HouseNumber: "58",
			Teasing: "Eski bir köşk", Clue1: "Sahil yolunda", Clue2: "Demir parmaklıklı bahçe"},
		{EventID: event.ID, Name: "Çelik Çifti", Email: "celik@example.com", Headcount: 2,
			Street: "Sultantepe Sokak", HouseNumber: "3",
			Teasing: "Tepeden şehir ışıkları", Clue1: "Dik merdivenler", Clue2: "Mavi kapı"},
		{EventID: event.ID, Name: "Koç Ailesi", Email: "koc@example.com", Headcount: 2,
			Street: "Selamsız Caddesi", HouseNumber: "21",
			Teasing: "Mahallenin en eski evi", Clue1: "Çınarın altı", Clue2: "Taş duvarlı avlu"},
	}
	for i := range parties {
		if err := db.Create(&parties[i]).Error; err != nil {
			configslog.Log.Error("Demo parti oluşturulamadı",
				zap.String("name", parties[i].Name), zap.Error(err))
			return err
		}
	}

	configslog.SLog.Info(fmt.Sprintf("Demo etkinlik oluşturuldu (ID: %d, %d parti).", event.ID, len(parties)))
	return nil
}
