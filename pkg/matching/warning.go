package matching

import (
	"fmt"

	"sofra.link/models"
)

// WarningKind ölümcül olmayan eşleştirme uyarılarının türleri. Uyarılar
// çalışmayı asla durdurmaz; kabul etmek, yeniden denemek veya elle düzeltmek
// çağıranın kararıdır.
type WarningKind string

const (
	// WarningCapacity belirli bir misafir bir etap için yerleştirilemedi.
	WarningCapacity WarningKind = "capacity"

	// WarningPreference genel tercih memnuniyeti %80'in altına düştü.
	WarningPreference WarningKind = "preference"

	// WarningUniqueMeeting iki parti birden fazla kez aynı sofrayı paylaştı.
	WarningUniqueMeeting WarningKind = "unique_meeting"
)

// Warning ölümcül olmayan tek bir eşleştirme uyarısı.
type Warning struct {
	Kind         WarningKind   `json:"kind"`
	PartyID      uint          `json:"party_id,omitempty"`
	OtherPartyID uint          `json:"other_party_id,omitempty"`
	Course       models.Course `json:"course,omitempty"`
	Message      string        `json:"message"`
}

func capacityWarning(partyID uint, course models.Course) Warning {
	return Warning{
		Kind:    WarningCapacity,
		PartyID: partyID,
		Course:  course,
		Message: fmt.Sprintf("parti %d, %s etabı için hiçbir ev sahibine yerleştirilemedi", partyID, course),
	}
}

func preferenceWarning(satisfaction float64) Warning {
	return Warning{
		Kind:    WarningPreference,
		Message: fmt.Sprintf("etap tercihi memnuniyeti %%%.0f, %%80 eşiğinin altında", satisfaction*100),
	}
}

func uniqueMeetingWarning(a, b uint, count int) Warning {
	return Warning{
		Kind:         WarningUniqueMeeting,
		PartyID:      a,
		OtherPartyID: b,
		Message:      fmt.Sprintf("parti %d ve parti %d %d kez aynı sofrayı paylaştı", a, b, count),
	}
}
