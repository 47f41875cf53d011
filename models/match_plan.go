package models

// PlanStatus bir eşleştirme planının yaşam döngüsü durumunu tanımlar.
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"      // Hesaplandı, henüz yayınlanmadı
	PlanStatusPublished  PlanStatus = "published"  // Katılımcılara açıldı
	PlanStatusSuperseded PlanStatus = "superseded" // Yeni bir plan tarafından geçersiz kılındı
)

// MatchPlan bir tam eşleştirme çalıştırmasının sürümlü kabı: aynı plana ait
// tüm Assignment, Pairing ve Envelope kayıtlarını bir arada tutar.
//
// Version sütunu iyimser kilitleme için kullanılır: her mutasyon (rematch,
// cascade) "WHERE version = ?" koşuluyla sayacı artırır, böylece aynı plan
// sürümüne aynı anda yalnızca tek mutasyon uygulanabilir.
type MatchPlan struct {
	BaseModel
	EventID uint       `gorm:"not null;index" json:"event_id"`
	Key     string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"key"`
	Version int        `gorm:"type:integer;not null;default:1" json:"version"`
	Status  PlanStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Note    string     `gorm:"type:varchar(255)" json:"note"`

	// İlişkiler
	Assignments []Assignment `gorm:"foreignKey:PlanID" json:"-"`
	Pairings    []Pairing    `gorm:"foreignKey:PlanID" json:"-"`
	Envelopes   []Envelope   `gorm:"foreignKey:PlanID" json:"-"`
}

// Assignment bir partinin bir etap için ev sahipliği görevi.
// Geçerli bir planda her aktif parti tam olarak bir etapta ev sahibidir.
type Assignment struct {
	BaseModel
	PlanID  uint   `gorm:"not null;index:idx_assignment_plan_party_course,unique" json:"plan_id"`
	PartyID uint   `gorm:"not null;index:idx_assignment_plan_party_course,unique" json:"party_id"`
	Course  Course `gorm:"type:varchar(10);not null;index:idx_assignment_plan_party_course,unique" json:"course"`
	IsHost  bool   `gorm:"not null;default:true" json:"is_host"`

	// Ev sahibinin bu etapta ağırlayabileceği toplam misafir kişi sayısı
	MaxGuestHeadcount int `gorm:"type:integer;not null" json:"max_guest_headcount"`
}

// Pairing "guest partisi bu etapta host partisinin evinde yemek yiyor" yönlü
// ilişkisi. HostPartyID != GuestPartyID her zaman geçerlidir; aynı etapta aynı
// hostu paylaşan birden çok pairing tek bir sofrayı oluşturur.
type Pairing struct {
	BaseModel
	PlanID       uint   `gorm:"not null;index" json:"plan_id"`
	Course       Course `gorm:"type:varchar(10);not null;index" json:"course"`
	HostPartyID  uint   `gorm:"not null;index" json:"host_party_id"`
	GuestPartyID uint   `gorm:"not null;index" json:"guest_party_id"`
}
