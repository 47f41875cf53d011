package matching

import (
	"time"

	"sofra.link/models"
)

// Schedule bir zarfın açılış aşamalarının zaman damgaları. Sıralama her zaman
// monoton artmayandır (azalmayan) ve OpensAt etap başlangıcına eşittir.
type Schedule struct {
	TeasingAt     time.Time `json:"teasing_at"`
	Clue1At       time.Time `json:"clue1_at"`
	Clue2At       time.Time `json:"clue2_at"`
	StreetAt      time.Time `json:"street_at"`
	HouseNumberAt time.Time `json:"house_number_at"`
	OpensAt       time.Time `json:"opens_at"`
}

// Times aşamaları açılış sırasıyla döndürür.
func (s Schedule) Times() []time.Time {
	return []time.Time{s.TeasingAt, s.Clue1At, s.Clue2At, s.StreetAt, s.HouseNumberAt, s.OpensAt}
}

// DeriveSchedule etap başlangıcından ve zamanlama yapılandırmasından zarf
// açılış programını türetir. Saf ve idempotenttir: zamanlama ayarı veya hedef
// adres değiştiğinde aynı girdiyle yeniden çalıştırılır.
//
// Etap ezmesi alan bazında global yapılandırmanın önüne geçer. travelMinutes
// > 0 ise sokak ve kapı numarası aşamaları, partinin yola çıkmaya yetecek
// kadar önden öğrenmesi için öne çekilir; hiçbir aşama asla geriye itilmez.
func DeriveSchedule(courseStart time.Time, timing TimingConfig, override *TimingOverride, travelMinutes int) Schedule {
	leads := timing
	if override != nil {
		if override.TeasingLeadMin != nil {
			leads.TeasingLeadMin = *override.TeasingLeadMin
		}
		if override.Clue1LeadMin != nil {
			leads.Clue1LeadMin = *override.Clue1LeadMin
		}
		if override.Clue2LeadMin != nil {
			leads.Clue2LeadMin = *override.Clue2LeadMin
		}
		if override.StreetLeadMin != nil {
			leads.StreetLeadMin = *override.StreetLeadMin
		}
		if override.HouseNumberLeadMin != nil {
			leads.HouseNumberLeadMin = *override.HouseNumberLeadMin
		}
	}

	before := func(minutes int) time.Time {
		return courseStart.Add(-time.Duration(minutes) * time.Minute)
	}

	s := Schedule{
		TeasingAt:     before(leads.TeasingLeadMin),
		Clue1At:       before(leads.Clue1LeadMin),
		Clue2At:       before(leads.Clue2LeadMin),
		StreetAt:      before(leads.StreetLeadMin),
		HouseNumberAt: before(leads.HouseNumberLeadMin),
		OpensAt:       courseStart,
	}

	// Yol süresi uzunsa adres aşamaları öne çekilir, asla geriye değil.
	if travelMinutes > 0 {
		latest := before(travelMinutes)
		s.StreetAt = earliest(s.StreetAt, latest)
		s.HouseNumberAt = earliest(s.HouseNumberAt, latest)
	}

	// Monoton azalmayan sıra: sondan başa doğru her aşama bir sonrakinden
	// geç olamaz.
	s.HouseNumberAt = earliest(s.HouseNumberAt, s.OpensAt)
	s.StreetAt = earliest(s.StreetAt, s.HouseNumberAt)
	s.Clue2At = earliest(s.Clue2At, s.StreetAt)
	s.Clue1At = earliest(s.Clue1At, s.Clue2At)
	s.TeasingAt = earliest(s.TeasingAt, s.Clue1At)

	return s
}

// ApplyTo programı bir zarfın zaman alanlarına yazar.
func (s Schedule) ApplyTo(e *models.Envelope) {
	e.TeasingAt = s.TeasingAt
	e.Clue1At = s.Clue1At
	e.Clue2At = s.Clue2At
	e.StreetAt = s.StreetAt
	e.HouseNumberAt = s.HouseNumberAt
	e.OpensAt = s.OpensAt
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
