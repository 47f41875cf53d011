package matching

import (
	"math"

	"sofra.link/models"
)

// AssignStats Adım A'nın özet istatistikleri.
type AssignStats struct {
	// Tercihi olan partilerin ne kadarı tercih ettiği etaba yerleşti (tercih
	// bildiren yoksa 1.0)
	PreferenceSatisfaction float64 `json:"preference_satisfaction"`

	// Etap başına toplam ev sahibi kapasitesi (ev sahibi sayısı × koltuk)
	CapacityPerCourse map[models.Course]int `json:"capacity_per_course"`
}

// StepAResult Adım A'nın çıktısı: aktif parti başına tam olarak bir ev
// sahipliği ataması ve özet istatistikler.
type StepAResult struct {
	Assignments []models.Assignment `json:"assignments"`
	Stats       AssignStats         `json:"stats"`
	Warnings    []Warning           `json:"warnings"`
}

// AssignCourses (Adım A) her aktif partiye ev sahibi olacağı tek bir etap atar.
//
// Algoritma: etap başına hedef sayı ceil(N/3) hesaplanır. İlk geçiş tercih
// bildiren partileri, tercih ettikleri etap hedef+1 kapasitesini aşmadığı
// sürece oraya yerleştirir; taşanlar tercihsiz havuza düşer. İkinci geçiş kalan
// herkesi o an en az ev sahibi olan etaba koyar (eşitlikte etap sırası).
// Yerleştirme sonrası her etap için kapasite < talep ise işlem bütünüyle
// başarısız olur; bu Adım B'nin ön koşuludur, parti bazlı bir uyarı değildir.
func AssignCourses(parties []models.Party, seatsPerHost int) (*StepAResult, error) {
	active := activeParties(parties)
	if len(active) < 3 {
		return nil, ErrTooFewParties
	}

	target := int(math.Ceil(float64(len(active)) / 3.0))
	hostsByCourse := make(map[models.Course][]models.Party, 3)

	// Geçiş 1: tercih bildirenler
	var pool []models.Party
	prefTotal, prefSatisfied := 0, 0
	for _, p := range active {
		if p.CoursePreference == nil || !p.CoursePreference.Valid() {
			pool = append(pool, p)
			continue
		}
		prefTotal++
		pref := *p.CoursePreference
		if len(hostsByCourse[pref]) < target+1 {
			hostsByCourse[pref] = append(hostsByCourse[pref], p)
			prefSatisfied++
		} else {
			pool = append(pool, p)
		}
	}

	// Geçiş 2: kalanlar en az dolu etaba (eşitlikte etap sırası)
	for _, p := range pool {
		best := models.CourseStarter
		for _, c := range models.AllCourses() {
			if len(hostsByCourse[c]) < len(hostsByCourse[best]) {
				best = c
			}
		}
		hostsByCourse[best] = append(hostsByCourse[best], p)
	}

	// Kapasite ön koşulu: her etapta kapasite >= o etapta misafir olacak
	// kişi sayısı olmalı
	totalHeadcount := 0
	for _, p := range active {
		totalHeadcount += p.Headcount
	}
	capacityPerCourse := make(map[models.Course]int, 3)
	for _, c := range models.AllCourses() {
		capacity := len(hostsByCourse[c]) * seatsPerHost
		capacityPerCourse[c] = capacity

		hostingHeadcount := 0
		for _, h := range hostsByCourse[c] {
			hostingHeadcount += h.Headcount
		}
		demand := totalHeadcount - hostingHeadcount
		if capacity < demand {
			return nil, ErrInsufficientCapacity
		}
	}

	result := &StepAResult{
		Stats: AssignStats{
			PreferenceSatisfaction: 1.0,
			CapacityPerCourse:      capacityPerCourse,
		},
	}
	for _, c := range models.AllCourses() {
		for _, h := range hostsByCourse[c] {
			result.Assignments = append(result.Assignments, models.Assignment{
				PartyID:           h.ID,
				Course:            c,
				IsHost:            true,
				MaxGuestHeadcount: seatsPerHost,
			})
		}
	}

	if prefTotal > 0 {
		result.Stats.PreferenceSatisfaction = float64(prefSatisfied) / float64(prefTotal)
		if result.Stats.PreferenceSatisfaction < 0.8 {
			result.Warnings = append(result.Warnings, preferenceWarning(result.Stats.PreferenceSatisfaction))
		}
	}

	return result, nil
}

func activeParties(parties []models.Party) []models.Party {
	active := make([]models.Party, 0, len(parties))
	for _, p := range parties {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}
