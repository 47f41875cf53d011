package models

import "time"

// Party etkinliğe kayıtlı bir katılımcı birimi (çift veya tek kişi).
// Eşleştirme yapıldıktan sonra fiziksel olarak silinmez; iptal bir bayraktır
// ve geçmiş korunur.
type Party struct {
	BaseModel
	EventID uint   `gorm:"not null;index" json:"event_id"`
	Name    string `gorm:"type:varchar(150);not null" json:"name"`
	Email   string `gorm:"type:varchar(150)" json:"email"`

	// 1 veya 2 kişi
	Headcount int `gorm:"type:integer;not null;default:2" json:"headcount"`

	// Adres, zarf aşamalarına uygun şekilde parçalı tutulur.
	Street      string `gorm:"type:varchar(255)" json:"street"`
	HouseNumber string `gorm:"type:varchar(20)" json:"house_number"`

	// Ev sahibinin zarf için verdiği ipucu metinleri
	Teasing string `gorm:"type:text" json:"teasing"`
	Clue1   string `gorm:"type:text" json:"clue1"`
	Clue2   string `gorm:"type:text" json:"clue2"`

	// İsteğe bağlı etap tercihi (hangi etabı ev sahibi olarak üstlenmek istiyor)
	CoursePreference *Course `gorm:"type:varchar(10)" json:"course_preference,omitempty"`

	IsCancelled bool       `gorm:"default:false;index" json:"is_cancelled"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// IsActive iptal edilmemiş mi kontrol eder.
func (p Party) IsActive() bool {
	return !p.IsCancelled
}

// BlockedPair iki partinin hiçbir masada bir araya getirilemeyeceğini söyler.
// PartyAID < PartyBID kanonik sırası korunur.
type BlockedPair struct {
	BaseModel
	EventID  uint   `gorm:"not null;index" json:"event_id"`
	PartyAID uint   `gorm:"not null;index:idx_blocked_pair,unique" json:"party_a_id"`
	PartyBID uint   `gorm:"not null;index:idx_blocked_pair,unique" json:"party_b_id"`
	Reason   string `gorm:"type:varchar(255)" json:"reason"`
}

// Normalize PartyAID < PartyBID sırasını garanti eder.
func (b *BlockedPair) Normalize() {
	if b.PartyAID > b.PartyBID {
		b.PartyAID, b.PartyBID = b.PartyBID, b.PartyAID
	}
}

// Matches verilen iki parti bu engel çiftini oluşturuyor mu (sıra bağımsız)?
func (b BlockedPair) Matches(x, y uint) bool {
	return (b.PartyAID == x && b.PartyBID == y) || (b.PartyAID == y && b.PartyBID == x)
}
