package models

import "time"

// Event bir gezen sofra organizasyonunu temsil eder.
type Event struct {
	BaseModel
	IsEnabled bool        `gorm:"default:true;index" json:"is_enabled"`
	Detail    EventDetail `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"detail"`

	// İlişkiler
	Parties      []Party                `gorm:"foreignKey:EventID" json:"-"`
	BlockedPairs []BlockedPair          `gorm:"foreignKey:EventID" json:"-"`
	Plans        []MatchPlan            `gorm:"foreignKey:EventID" json:"-"`
	Overrides    []CourseTimingOverride `gorm:"foreignKey:EventID" json:"-"`
}

// EventDetail etkinliğin etap saatlerini ve zarf açılış zamanlama ayarlarını taşır.
// Lead alanları "etap başlamadan kaç dakika önce" anlamındadır.
type EventDetail struct {
	BaseModel
	EventID     uint      `gorm:"uniqueIndex;not null" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	EventDate   time.Time `gorm:"index" json:"event_date"`
	City        string    `gorm:"type:varchar(120)" json:"city"`

	// Etap başlangıç saatleri
	StarterAt time.Time `gorm:"not null" json:"starter_at"`
	MainAt    time.Time `gorm:"not null" json:"main_at"`
	DessertAt time.Time `gorm:"not null" json:"dessert_at"`

	// Ev sahibi başına sabit misafir kişi kapasitesi
	SeatsPerHost int `gorm:"type:integer;not null;default:6" json:"seats_per_host"`

	// Global zarf açılış zamanlaması (dakika cinsinden lead)
	TeasingLeadMin     int `gorm:"type:integer;not null;default:240" json:"teasing_lead_min"`
	Clue1LeadMin       int `gorm:"type:integer;not null;default:120" json:"clue1_lead_min"`
	Clue2LeadMin       int `gorm:"type:integer;not null;default:60" json:"clue2_lead_min"`
	StreetLeadMin      int `gorm:"type:integer;not null;default:30" json:"street_lead_min"`
	HouseNumberLeadMin int `gorm:"type:integer;not null;default:15" json:"house_number_lead_min"`

	// Uzun yol süreleri sokak/kapı numarası aşamalarını öne çeksin mi?
	DistanceAdjust bool `gorm:"type:boolean;default:false" json:"distance_adjust"`
}

// CourseTimingOverride tek bir etap için global zamanlamayı alan bazında ezer.
// Nil alanlar global değeri kullanır.
type CourseTimingOverride struct {
	BaseModel
	EventID uint   `gorm:"not null;index:idx_override_event_course,unique" json:"-"`
	Course  Course `gorm:"type:varchar(10);not null;index:idx_override_event_course,unique" json:"course"`

	TeasingLeadMin     *int `gorm:"type:integer" json:"teasing_lead_min,omitempty"`
	Clue1LeadMin       *int `gorm:"type:integer" json:"clue1_lead_min,omitempty"`
	Clue2LeadMin       *int `gorm:"type:integer" json:"clue2_lead_min,omitempty"`
	StreetLeadMin      *int `gorm:"type:integer" json:"street_lead_min,omitempty"`
	HouseNumberLeadMin *int `gorm:"type:integer" json:"house_number_lead_min,omitempty"`
}

// CourseStart ilgili etabın başlangıç saatini döndürür.
func (d EventDetail) CourseStart(course Course) time.Time {
	switch course {
	case CourseStarter:
		return d.StarterAt
	case CourseMain:
		return d.MainAt
	case CourseDessert:
		return d.DessertAt
	}
	return time.Time{}
}
