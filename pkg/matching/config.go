package matching

import (
	"time"

	"sofra.link/models"
)

// TimingConfig zarf aşamalarının etap başlangıcından kaç dakika önce
// açılacağını tanımlar.
type TimingConfig struct {
	TeasingLeadMin     int
	Clue1LeadMin       int
	Clue2LeadMin       int
	StreetLeadMin      int
	HouseNumberLeadMin int
}

// TimingOverride tek bir etap için alan bazında zamanlama ezmesi.
// Nil alanlar global değeri kullanır.
type TimingOverride struct {
	TeasingLeadMin     *int
	Clue1LeadMin       *int
	Clue2LeadMin       *int
	StreetLeadMin      *int
	HouseNumberLeadMin *int
}

// TravelEstimator iki adres arasındaki tahmini yol süresini dakika cinsinden
// verir. Gerçek mesafe/rota hesabı motorun dışındadır; motor yalnızca sonucu
// zarf zamanlamasını öne çekmek için kullanır.
type TravelEstimator interface {
	TravelMinutes(from, to models.Party) int
}

// NoTravel yol süresi hesabı yapılmayan varsayılan tahminci.
type NoTravel struct{}

// TravelMinutes her zaman 0 döndürür.
func (NoTravel) TravelMinutes(_, _ models.Party) int { return 0 }

// PlanConfig tek bir eşleştirme çalıştırmasının tüm yapılandırması.
type PlanConfig struct {
	SeatsPerHost   int
	CourseStarts   map[models.Course]time.Time
	Timing         TimingConfig
	Overrides      map[models.Course]TimingOverride
	DistanceAdjust bool
	Travel         TravelEstimator
}

// ConfigFromEvent etkinlik detayından ve etap ezmelerinden PlanConfig kurar.
func ConfigFromEvent(detail models.EventDetail, overrides []models.CourseTimingOverride) PlanConfig {
	cfg := PlanConfig{
		SeatsPerHost: detail.SeatsPerHost,
		CourseStarts: map[models.Course]time.Time{
			models.CourseStarter: detail.StarterAt,
			models.CourseMain:    detail.MainAt,
			models.CourseDessert: detail.DessertAt,
		},
		Timing: TimingConfig{
			TeasingLeadMin:     detail.TeasingLeadMin,
			Clue1LeadMin:       detail.Clue1LeadMin,
			Clue2LeadMin:       detail.Clue2LeadMin,
			StreetLeadMin:      detail.StreetLeadMin,
			HouseNumberLeadMin: detail.HouseNumberLeadMin,
		},
		Overrides:      make(map[models.Course]TimingOverride, len(overrides)),
		DistanceAdjust: detail.DistanceAdjust,
		Travel:         NoTravel{},
	}
	for _, o := range overrides {
		cfg.Overrides[o.Course] = TimingOverride{
			TeasingLeadMin:     o.TeasingLeadMin,
			Clue1LeadMin:       o.Clue1LeadMin,
			Clue2LeadMin:       o.Clue2LeadMin,
			StreetLeadMin:      o.StreetLeadMin,
			HouseNumberLeadMin: o.HouseNumberLeadMin,
		}
	}
	return cfg
}

// overrideFor ilgili etabın ezmesini varsa döndürür.
func (c PlanConfig) overrideFor(course models.Course) *TimingOverride {
	if c.Overrides == nil {
		return nil
	}
	if o, ok := c.Overrides[course]; ok {
		return &o
	}
	return nil
}

// travelMinutes mesafe ayarı açıksa misafir ile ev sahibi arasındaki tahmini
// yol süresini döndürür, değilse 0.
func (c PlanConfig) travelMinutes(guest, host models.Party) int {
	if !c.DistanceAdjust || c.Travel == nil {
		return 0
	}
	m := c.Travel.TravelMinutes(guest, host)
	if m < 0 {
		return 0
	}
	return m
}
