package matching

import (
	"math/rand"
	"sort"
	"time"

	"sofra.link/models"
)

// MatchStats Adım B'nin özet istatistikleri.
type MatchStats struct {
	// Üretilen pairinglerde yer alan parti sayısı (ev sahibi veya misafir)
	MatchedParties int `json:"matched_parties"`

	// Oturtulan misafir kişi sayısının işlenen etaplardaki toplam kapasiteye oranı
	CapacityUtilization float64 `json:"capacity_utilization"`
}

// StepBResult Adım B'nin çıktısı: pairingler, zarflar, ölümcül olmayan
// uyarılar ve istatistikler. Zarf Key alanları boş bırakılır; kalıcılaştıran
// katman doldurur.
type StepBResult struct {
	Pairings  []models.Pairing  `json:"pairings"`
	Envelopes []models.Envelope `json:"envelopes"`
	Warnings  []Warning         `json:"warnings"`
	Stats     MatchStats        `json:"stats"`
}

// MatchInput Adım B'nin girdileri.
type MatchInput struct {
	Assignments  []models.Assignment
	Parties      []models.Party
	BlockedPairs []models.BlockedPair

	// FrozenCourses bu çalıştırmada dokunulmayacak etaplar. Bu etaplar için
	// pairing/zarf üretilmez; ExistingPairings içindeki kayıtları buluşma
	// sayaçlarını tohumlamak için kullanılır.
	FrozenCourses []models.Course

	// ExistingPairings korunan (dondurulmuş) etapların mevcut pairingleri.
	ExistingPairings []models.Pairing

	Config PlanConfig

	// Rand misafir sırasını karıştırmak için. Nil ise crypto tohumlu yeni bir
	// kaynak kullanılır; deterministik sonuç isteyen çağıran kendi tohumlu
	// kaynağını vermelidir.
	Rand *rand.Rand
}

// hostSlot bir etaptaki tek bir sofranın anlık durumu.
type hostSlot struct {
	host     models.Party
	capacity int
	used     int
	seated   []uint
}

func (s *hostSlot) remaining() int { return s.capacity - s.used }

func (s *hostSlot) fillRatio() float64 {
	if s.capacity == 0 {
		return 1.0
	}
	return float64(s.used) / float64(s.capacity)
}

// pairKey sırasız parti çifti için kanonik anahtar.
func pairKey(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}

// MatchGuests (Adım B) her etap için ev sahibi olmayan her aktif partiyi bir
// ev sahibine atar.
//
// Etaplar bağımsız işlenir: ev sahibi slotları atamalardan kurulur, misafir
// listesi karıştırılır ve her misafir için uygun slotlar puanlanıp en iyisi
// seçilir. Koltuk yeterliliği, kendi kendine ev sahipliği yasağı ve engelli
// çift dışlaması (ev sahibiyle de, oturan misafirlerle de) katı kısıtlardır.
// Buluşma tekilliği önce katı uygulanır; misafir aksi halde açıkta kalacaksa
// gevşetilir ve tekrar uyarı olarak raporlanır (bkz. pickSlot). Puan en az
// dolu sofrayı tercih eder. Hiçbir slot uygun değilse misafir o etap için
// açıkta kalır ve kapasite uyarısı kaydedilir; arama diğer misafirler için
// sürer.
//
// Tek geçişli, rastgele sıralı ve açgözlü bir aramadır; küresel optimum
// aramaz ve aramamalıdır.
func MatchGuests(in MatchInput) (*StepBResult, error) {
	for _, a := range in.Assignments {
		if !a.Course.Valid() {
			return nil, ErrUnknownCourse
		}
	}

	rng := in.Rand
	if rng == nil {
		seed, err := NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	partyByID := make(map[uint]models.Party, len(in.Parties))
	for _, p := range in.Parties {
		partyByID[p.ID] = p
	}

	blocked := make(map[[2]uint]bool, len(in.BlockedPairs))
	for _, b := range in.BlockedPairs {
		blocked[pairKey(b.PartyAID, b.PartyBID)] = true
	}

	frozen := make(map[models.Course]bool, len(in.FrozenCourses))
	for _, c := range in.FrozenCourses {
		frozen[c] = true
	}

	// Buluşma sayaçları: dondurulmuş etapların mevcut sofraları tohum olur,
	// böylece yeniden eşleştirme korunan buluşmaları tekrarlamaz.
	meetings := make(map[[2]uint]int)
	seedMeetings(meetings, in.ExistingPairings)

	result := &StepBResult{}
	totalCapacity := 0
	seatedHeadcount := 0
	matched := make(map[uint]bool)

	for _, course := range models.AllCourses() {
		if frozen[course] {
			continue
		}

		// Slotlar atamalardan, sabit sırayla
		var slots []*hostSlot
		hosting := make(map[uint]bool)
		for _, a := range in.Assignments {
			if a.Course != course {
				continue
			}
			host, ok := partyByID[a.PartyID]
			if !ok || !host.IsActive() {
				continue
			}
			hosting[a.PartyID] = true
			slots = append(slots, &hostSlot{host: host, capacity: a.MaxGuestHeadcount})
			totalCapacity += a.MaxGuestHeadcount

			// Ev sahibinin kendi "ev sahibisin" zarfı
			env := hostEnvelope(host, course, in.Config)
			result.Envelopes = append(result.Envelopes, env)
			matched[a.PartyID] = true
		}
		sort.Slice(slots, func(i, j int) bool { return slots[i].host.ID < slots[j].host.ID })

		// Misafirler: bu etapta ev sahibi olmayan tüm aktif partiler
		var guests []models.Party
		for _, p := range in.Parties {
			if p.IsActive() && !hosting[p.ID] {
				guests = append(guests, p)
			}
		}
		sort.Slice(guests, func(i, j int) bool { return guests[i].ID < guests[j].ID })
		rng.Shuffle(len(guests), func(i, j int) { guests[i], guests[j] = guests[j], guests[i] })

		for _, guest := range guests {
			slot := pickSlot(slots, guest, blocked, meetings)
			if slot == nil {
				result.Warnings = append(result.Warnings, capacityWarning(guest.ID, course))
				continue
			}

			// Buluşmalar oturtma anında kaydedilir: ev sahibiyle ve masada
			// oturan her misafirle birer kez.
			meetings[pairKey(guest.ID, slot.host.ID)]++
			for _, other := range slot.seated {
				meetings[pairKey(guest.ID, other)]++
			}

			slot.seated = append(slot.seated, guest.ID)
			slot.used += guest.Headcount
			seatedHeadcount += guest.Headcount
			matched[guest.ID] = true

			result.Pairings = append(result.Pairings, models.Pairing{
				Course:       course,
				HostPartyID:  slot.host.ID,
				GuestPartyID: guest.ID,
			})
			result.Envelopes = append(result.Envelopes, guestEnvelope(guest, slot.host, course, in.Config))
		}
	}

	// Tekillik yumuşak kısıtının raporu: birden fazla kez buluşan çiftler
	for key, count := range meetings {
		if count > 1 {
			result.Warnings = append(result.Warnings, uniqueMeetingWarning(key[0], key[1], count))
		}
	}
	sortWarnings(result.Warnings)

	result.Stats.MatchedParties = len(matched)
	if totalCapacity > 0 {
		result.Stats.CapacityUtilization = float64(seatedHeadcount) / float64(totalCapacity)
	}

	return result, nil
}

// pickSlot uygun slotlar arasından en düşük doluluk oranlısını seçer.
// Eşitlikte slot sırası (ev sahibi ID sırası) geçerlidir.
//
// Tekillik kısıtı iki kademeli uygulanır: önce daha önce buluşulmamış
// slotlar aranır; hiçbiri uygun değilse misafiri açıkta bırakmak yerine
// buluşma tekrarına izin verilir ve tekrar, çalıştırma sonunda
// unique_meeting uyarısı olarak raporlanır. Koltuk, kendi kendine ev
// sahipliği ve engelli çift kısıtları hiçbir kademede gevşetilmez.
func pickSlot(slots []*hostSlot, guest models.Party, blocked map[[2]uint]bool, meetings map[[2]uint]int) *hostSlot {
	if slot := bestSlot(slots, guest, blocked, meetings); slot != nil {
		return slot
	}
	return bestSlot(slots, guest, blocked, nil)
}

func bestSlot(slots []*hostSlot, guest models.Party, blocked map[[2]uint]bool, meetings map[[2]uint]int) *hostSlot {
	var best *hostSlot
	for _, slot := range slots {
		if !feasible(slot, guest, blocked, meetings) {
			continue
		}
		if best == nil || slot.fillRatio() < best.fillRatio() {
			best = slot
		}
	}
	return best
}

// feasible katı kısıtları kontrol eder. meetings nil ise tekillik kısıtı
// atlanır (gevşetilmiş kademe).
func feasible(slot *hostSlot, guest models.Party, blocked map[[2]uint]bool, meetings map[[2]uint]int) bool {
	if slot.host.ID == guest.ID {
		return false
	}
	if slot.remaining() < guest.Headcount {
		return false
	}
	if blocked[pairKey(guest.ID, slot.host.ID)] {
		return false
	}
	if meetings != nil && meetings[pairKey(guest.ID, slot.host.ID)] > 0 {
		return false
	}
	for _, other := range slot.seated {
		if blocked[pairKey(guest.ID, other)] {
			return false
		}
		if meetings != nil && meetings[pairKey(guest.ID, other)] > 0 {
			return false
		}
	}
	return true
}

// seedMeetings mevcut pairinglerden sofra üyeliklerini çıkarıp her sırasız
// çift için buluşma sayaçlarını artırır.
func seedMeetings(meetings map[[2]uint]int, pairings []models.Pairing) {
	type table struct {
		course models.Course
		host   uint
	}
	members := make(map[table][]uint)
	for _, p := range pairings {
		t := table{course: p.Course, host: p.HostPartyID}
		if len(members[t]) == 0 {
			members[t] = append(members[t], p.HostPartyID)
		}
		members[t] = append(members[t], p.GuestPartyID)
	}
	for _, m := range members {
		for i := 0; i < len(m); i++ {
			for j := i + 1; j < len(m); j++ {
				meetings[pairKey(m[i], m[j])]++
			}
		}
	}
}

// guestEnvelope misafirin hedef zarfını kurar: ev sahibinin adresi, ipuçları
// ve yol süresine göre türetilmiş açılış programı.
func guestEnvelope(guest, host models.Party, course models.Course, cfg PlanConfig) models.Envelope {
	e := models.Envelope{
		PartyID:         guest.ID,
		Course:          course,
		IsHost:          false,
		HostPartyID:     host.ID,
		DestStreet:      host.Street,
		DestHouseNumber: host.HouseNumber,
		Teasing:         host.Teasing,
		Clue1:           host.Clue1,
		Clue2:           host.Clue2,
		Status:          models.EnvelopeStatusActive,
	}
	s := DeriveSchedule(cfg.CourseStarts[course], cfg.Timing, cfg.overrideFor(course), cfg.travelMinutes(guest, host))
	s.ApplyTo(&e)
	return e
}

// hostEnvelope ev sahibinin kendi etabı için zarfı: hedef kendi evi, yol yok.
func hostEnvelope(host models.Party, course models.Course, cfg PlanConfig) models.Envelope {
	e := models.Envelope{
		PartyID:         host.ID,
		Course:          course,
		IsHost:          true,
		HostPartyID:     host.ID,
		DestStreet:      host.Street,
		DestHouseNumber: host.HouseNumber,
		Teasing:         host.Teasing,
		Clue1:           host.Clue1,
		Clue2:           host.Clue2,
		Status:          models.EnvelopeStatusActive,
	}
	s := DeriveSchedule(cfg.CourseStarts[course], cfg.Timing, cfg.overrideFor(course), 0)
	s.ApplyTo(&e)
	return e
}

// sortWarnings raporu deterministik hale getirir: tür, parti, etap sırası.
func sortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Kind != ws[j].Kind {
			return ws[i].Kind < ws[j].Kind
		}
		if ws[i].PartyID != ws[j].PartyID {
			return ws[i].PartyID < ws[j].PartyID
		}
		return ws[i].OtherPartyID < ws[j].OtherPartyID
	})
}
