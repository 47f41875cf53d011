package repositories

import (
	"context"
	"errors"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IEnvelopeRepository zarf veritabanı işlemleri için arayüz.
type IEnvelopeRepository interface {
	Create(ctx context.Context, envelope *models.Envelope) error
	CreateBatch(ctx context.Context, envelopes []models.Envelope) error
	FindByKey(ctx context.Context, key string) (*models.Envelope, error)
	FindByPlan(ctx context.Context, planID uint) ([]models.Envelope, error)
	FindActiveByPlan(ctx context.Context, planID uint) ([]models.Envelope, error)
	FindActiveByParty(ctx context.Context, planID, partyID uint) ([]models.Envelope, error)
	Save(ctx context.Context, envelope *models.Envelope) error
	CancelActiveByParty(ctx context.Context, planID, partyID uint) (int64, error)
	CancelActiveHostEnvelope(ctx context.Context, planID, partyID uint) (int64, error)
	CancelActiveHostEnvelopeForCourse(ctx context.Context, planID, partyID uint, course models.Course) (int64, error)
	CancelActiveGuestsOfHost(ctx context.Context, planID, hostPartyID uint) (int64, error)
	UpdateDestinationByHost(ctx context.Context, planID, hostPartyID uint, host models.Party) (int64, error)
	RepointHost(ctx context.Context, planID, fromHostID uint, newHost models.Party, courses []models.Course) (int64, error)
	DeleteByPartyAndCourse(ctx context.Context, planID, partyID uint, course models.Course) (int64, error)
	DeleteByPlanAndCourses(ctx context.Context, planID uint, courses []models.Course) (int64, error)
}

// EnvelopeRepository IEnvelopeRepository'nin GORM implementasyonu.
type EnvelopeRepository struct {
	db *gorm.DB
}

// NewEnvelopeRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewEnvelopeRepository() IEnvelopeRepository {
	return NewEnvelopeRepositoryTx(configsdatabase.GetDB())
}

// NewEnvelopeRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewEnvelopeRepositoryTx(tx *gorm.DB) IEnvelopeRepository {
	return &EnvelopeRepository{db: tx}
}

// Create tek bir zarf oluşturur.
func (r *EnvelopeRepository) Create(ctx context.Context, envelope *models.Envelope) error {
	if envelope == nil || envelope.PlanID == 0 || envelope.Key == "" {
		return errors.New("geçersiz zarf")
	}
	return r.db.WithContext(ctx).Create(envelope).Error
}

// CreateBatch zarfları topluca oluşturur.
func (r *EnvelopeRepository) CreateBatch(ctx context.Context, envelopes []models.Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&envelopes).Error
}

// FindByKey zarfı public anahtarıyla bulur.
func (r *EnvelopeRepository) FindByKey(ctx context.Context, key string) (*models.Envelope, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var envelope models.Envelope
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&envelope).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &envelope, nil
}

// FindByPlan planın tüm zarflarını getirir (iptaller dahil).
func (r *EnvelopeRepository) FindByPlan(ctx context.Context, planID uint) ([]models.Envelope, error) {
	var envelopes []models.Envelope
	err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Order("id").Find(&envelopes).Error
	if err != nil {
		configslog.Log.Error("EnvelopeRepository.FindByPlan: DB error", zap.Uint("plan_id", planID), zap.Error(err))
		return nil, err
	}
	return envelopes, nil
}

// FindActiveByPlan planın aktif zarflarını getirir.
func (r *EnvelopeRepository) FindActiveByPlan(ctx context.Context, planID uint) ([]models.Envelope, error) {
	var envelopes []models.Envelope
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND status = ?", planID, models.EnvelopeStatusActive).
		Order("id").Find(&envelopes).Error
	if err != nil {
		return nil, err
	}
	return envelopes, nil
}

// FindActiveByParty partinin plandaki aktif zarflarını getirir.
func (r *EnvelopeRepository) FindActiveByParty(ctx context.Context, planID, partyID uint) ([]models.Envelope, error) {
	var envelopes []models.Envelope
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND party_id = ? AND status = ?", planID, partyID, models.EnvelopeStatusActive).
		Order("id").Find(&envelopes).Error
	if err != nil {
		return nil, err
	}
	return envelopes, nil
}

// Save zarfı bütünüyle günceller.
func (r *EnvelopeRepository) Save(ctx context.Context, envelope *models.Envelope) error {
	if envelope == nil || envelope.ID == 0 {
		return errors.New("güncellenecek zarf geçerli değil")
	}
	return r.db.WithContext(ctx).Save(envelope).Error
}

// CancelActiveByParty partinin plandaki tüm aktif zarflarını iptal eder.
func (r *EnvelopeRepository) CancelActiveByParty(ctx context.Context, planID, partyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Envelope{}).
		Where("plan_id = ? AND party_id = ? AND status = ?", planID, partyID, models.EnvelopeStatusActive).
		Update("status", models.EnvelopeStatusCancelled)
	return result.RowsAffected, result.Error
}

// CancelActiveHostEnvelope partinin "ev sahibisin" zarfını iptal eder.
func (r *EnvelopeRepository) CancelActiveHostEnvelope(ctx context.Context, planID, partyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Envelope{}).
		Where("plan_id = ? AND party_id = ? AND is_host = ? AND status = ?",
			planID, partyID, true, models.EnvelopeStatusActive).
		Update("status", models.EnvelopeStatusCancelled)
	return result.RowsAffected, result.Error
}

// CancelActiveHostEnvelopeForCourse yalnızca verilen etabın "ev sahibisin"
// zarfını iptal eder; partinin diğer etaplardaki ev sahipliği zarflarına
// dokunmaz.
func (r *EnvelopeRepository) CancelActiveHostEnvelopeForCourse(ctx context.Context, planID, partyID uint, course models.Course) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Envelope{}).
		Where("plan_id = ? AND party_id = ? AND course = ? AND is_host = ? AND status = ?",
			planID, partyID, course, true, models.EnvelopeStatusActive).
		Update("status", models.EnvelopeStatusCancelled)
	return result.RowsAffected, result.Error
}

// CancelActiveGuestsOfHost bir ev sahibine gidecek misafirlerin aktif
// zarflarını iptal eder (ev sahibinin kendi zarfı hariç).
func (r *EnvelopeRepository) CancelActiveGuestsOfHost(ctx context.Context, planID, hostPartyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Envelope{}).
		Where("plan_id = ? AND host_party_id = ? AND is_host = ? AND status = ?",
			planID, hostPartyID, false, models.EnvelopeStatusActive).
		Update("status", models.EnvelopeStatusCancelled)
	return result.RowsAffected, result.Error
}

// UpdateDestinationByHost ev sahibinin adresi değiştiğinde ona işaret eden
// tüm aktif zarfların hedef alanlarını yerinde günceller.
func (r *EnvelopeRepository) UpdateDestinationByHost(ctx context.Context, planID, hostPartyID uint, host models.Party) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Envelope{}).
		Where("plan_id = ? AND host_party_id = ? AND status = ?", planID, hostPartyID, models.EnvelopeStatusActive).
		Updates(map[string]interface{}{
			"dest_street":       host.Street,
			"dest_house_number": host.HouseNumber,
			"teasing":           host.Teasing,
			"clue1":             host.Clue1,
			"clue2":             host.Clue2,
		})
	return result.RowsAffected, result.Error
}

// RepointHost ev sahipliği devrinde misafir zarflarını yeni ev sahibine
// yönlendirir: hedef adres ve ipucu metinleri yeni ev sahibinden alınır.
func (r *EnvelopeRepository) RepointHost(ctx context.Context, planID, fromHostID uint, newHost models.Party, courses []models.Course) (int64, error) {
	if len(courses) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Envelope{}).
		Where("plan_id = ? AND host_party_id = ? AND is_host = ? AND course IN ? AND status = ?",
			planID, fromHostID, false, courses, models.EnvelopeStatusActive).
		Updates(map[string]interface{}{
			"host_party_id":     newHost.ID,
			"dest_street":       newHost.Street,
			"dest_house_number": newHost.HouseNumber,
			"teasing":           newHost.Teasing,
			"clue1":             newHost.Clue1,
			"clue2":             newHost.Clue2,
		})
	return result.RowsAffected, result.Error
}

// DeleteByPartyAndCourse partinin bir etaptaki zarfını siler (soft delete).
// Yeniden atama gibi zarfın yeniden üretileceği durumlarda kullanılır;
// iptal kaydı bırakmak için CancelActiveByParty tercih edilir.
func (r *EnvelopeRepository) DeleteByPartyAndCourse(ctx context.Context, planID, partyID uint, course models.Course) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND party_id = ? AND course = ?", planID, partyID, course).
		Delete(&models.Envelope{})
	return result.RowsAffected, result.Error
}

// DeleteByPlanAndCourses planın belirli etaplardaki tüm zarflarını siler.
// Yeniden eşleştirmede dondurulmamış etapları temizlemek için kullanılır.
func (r *EnvelopeRepository) DeleteByPlanAndCourses(ctx context.Context, planID uint, courses []models.Course) (int64, error) {
	if len(courses) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND course IN ?", planID, courses).
		Delete(&models.Envelope{})
	return result.RowsAffected, result.Error
}

var _ IEnvelopeRepository = (*EnvelopeRepository)(nil)
