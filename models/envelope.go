package models

import "time"

// EnvelopeStatus zarf durumları.
type EnvelopeStatus string

const (
	EnvelopeStatusActive    EnvelopeStatus = "active"
	EnvelopeStatusCancelled EnvelopeStatus = "cancelled"
)

// Envelope bir partinin bir etap için zamanlı açılış programı: hedef adres,
// ev sahibi kimliği ve aşama aşama açılan ipucu zamanları. Ev sahibinin kendi
// etabı için de "ev sahibisin" zarfı bulunur (IsHost=true).
type Envelope struct {
	BaseModel
	PlanID  uint   `gorm:"not null;index:idx_envelope_plan_party_course" json:"plan_id"`
	PartyID uint   `gorm:"not null;index:idx_envelope_plan_party_course" json:"party_id"`
	Course  Course `gorm:"type:varchar(10);not null;index:idx_envelope_plan_party_course" json:"course"`

	// Public açılış linki anahtarı
	Key string `gorm:"type:varchar(36);uniqueIndex;not null" json:"key"`

	IsHost      bool `gorm:"not null;default:false" json:"is_host"`
	HostPartyID uint `gorm:"not null;index" json:"host_party_id"`

	// Hedef adres ve ipucu metinleri (eşleştirme anında hosttan kopyalanır,
	// adres değişikliği cascade'i ile yerinde güncellenir)
	DestStreet      string `gorm:"type:varchar(255)" json:"dest_street"`
	DestHouseNumber string `gorm:"type:varchar(20)" json:"dest_house_number"`
	Teasing         string `gorm:"type:text" json:"teasing"`
	Clue1           string `gorm:"type:text" json:"clue1"`
	Clue2           string `gorm:"type:text" json:"clue2"`

	// Açılış aşamaları; monoton artan sırada, OpensAt etap başlangıcına eşittir.
	TeasingAt     time.Time `gorm:"not null" json:"teasing_at"`
	Clue1At       time.Time `gorm:"not null" json:"clue1_at"`
	Clue2At       time.Time `gorm:"not null" json:"clue2_at"`
	StreetAt      time.Time `gorm:"not null" json:"street_at"`
	HouseNumberAt time.Time `gorm:"not null" json:"house_number_at"`
	OpensAt       time.Time `gorm:"not null" json:"opens_at"`

	Status EnvelopeStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
}

// IsActiveEnvelope zarf iptal edilmemiş mi?
func (e Envelope) IsActiveEnvelope() bool {
	return e.Status == EnvelopeStatusActive
}
