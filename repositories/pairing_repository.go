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

// IPairingRepository pairing veritabanı işlemleri için arayüz.
type IPairingRepository interface {
	Create(ctx context.Context, pairing *models.Pairing) error
	CreateBatch(ctx context.Context, pairings []models.Pairing) error
	FindByPlan(ctx context.Context, planID uint) ([]models.Pairing, error)
	FindByPlanAndCourses(ctx context.Context, planID uint, courses []models.Course) ([]models.Pairing, error)
	FindByHost(ctx context.Context, planID, hostPartyID uint) ([]models.Pairing, error)
	FindByHostAndCourses(ctx context.Context, planID, hostPartyID uint, courses []models.Course) ([]models.Pairing, error)
	FindByGuestAndCourse(ctx context.Context, planID, guestPartyID uint, course models.Course) (*models.Pairing, error)
	DeleteByGuest(ctx context.Context, planID, guestPartyID uint) (int64, error)
	DeleteByGuestAndCourse(ctx context.Context, planID, guestPartyID uint, course models.Course) (int64, error)
	DeleteByHost(ctx context.Context, planID, hostPartyID uint) (int64, error)
	DeleteByPlanAndCourses(ctx context.Context, planID uint, courses []models.Course) (int64, error)
	RepointHost(ctx context.Context, planID, fromHostID, toHostID uint, courses []models.Course) (int64, error)
}

// PairingRepository IPairingRepository'nin GORM implementasyonu.
type PairingRepository struct {
	db *gorm.DB
}

// NewPairingRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewPairingRepository() IPairingRepository {
	return NewPairingRepositoryTx(configsdatabase.GetDB())
}

// NewPairingRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewPairingRepositoryTx(tx *gorm.DB) IPairingRepository {
	return &PairingRepository{db: tx}
}

// Create tek bir pairing oluşturur. Kendi kendine ev sahipliği hiçbir koşulda
// yazılamaz.
func (r *PairingRepository) Create(ctx context.Context, pairing *models.Pairing) error {
	if pairing == nil || pairing.PlanID == 0 {
		return errors.New("geçersiz pairing")
	}
	if pairing.HostPartyID == pairing.GuestPartyID {
		return errors.New("parti kendi kendinin misafiri olamaz")
	}
	return r.db.WithContext(ctx).Create(pairing).Error
}

// CreateBatch pairingleri topluca oluşturur.
func (r *PairingRepository) CreateBatch(ctx context.Context, pairings []models.Pairing) error {
	if len(pairings) == 0 {
		return nil
	}
	for _, p := range pairings {
		if p.HostPartyID == p.GuestPartyID {
			return errors.New("parti kendi kendinin misafiri olamaz")
		}
	}
	return r.db.WithContext(ctx).Create(&pairings).Error
}

// FindByPlan planın tüm pairinglerini getirir.
func (r *PairingRepository) FindByPlan(ctx context.Context, planID uint) ([]models.Pairing, error) {
	var pairings []models.Pairing
	err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Order("id").Find(&pairings).Error
	if err != nil {
		configslog.Log.Error("PairingRepository.FindByPlan: DB error", zap.Uint("plan_id", planID), zap.Error(err))
		return nil, err
	}
	return pairings, nil
}

// FindByPlanAndCourses planın belirli etaplardaki pairinglerini getirir.
func (r *PairingRepository) FindByPlanAndCourses(ctx context.Context, planID uint, courses []models.Course) ([]models.Pairing, error) {
	if len(courses) == 0 {
		return nil, nil
	}
	var pairings []models.Pairing
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND course IN ?", planID, courses).
		Order("id").Find(&pairings).Error
	if err != nil {
		return nil, err
	}
	return pairings, nil
}

// FindByHost partinin ev sahibi olduğu pairingleri getirir.
func (r *PairingRepository) FindByHost(ctx context.Context, planID, hostPartyID uint) ([]models.Pairing, error) {
	var pairings []models.Pairing
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND host_party_id = ?", planID, hostPartyID).
		Order("id").Find(&pairings).Error
	if err != nil {
		return nil, err
	}
	return pairings, nil
}

// FindByHostAndCourses partinin belirli etaplarda ev sahibi olduğu pairingleri getirir.
func (r *PairingRepository) FindByHostAndCourses(ctx context.Context, planID, hostPartyID uint, courses []models.Course) ([]models.Pairing, error) {
	if len(courses) == 0 {
		return nil, nil
	}
	var pairings []models.Pairing
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND host_party_id = ? AND course IN ?", planID, hostPartyID, courses).
		Order("id").Find(&pairings).Error
	if err != nil {
		return nil, err
	}
	return pairings, nil
}

// FindByGuestAndCourse misafirin bir etaptaki pairingini getirir.
func (r *PairingRepository) FindByGuestAndCourse(ctx context.Context, planID, guestPartyID uint, course models.Course) (*models.Pairing, error) {
	var pairing models.Pairing
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND guest_party_id = ? AND course = ?", planID, guestPartyID, course).
		First(&pairing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pairing, nil
}

// DeleteByGuest partinin misafir olduğu tüm pairingleri siler.
func (r *PairingRepository) DeleteByGuest(ctx context.Context, planID, guestPartyID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND guest_party_id = ?", planID, guestPartyID).
		Delete(&models.Pairing{})
	return result.RowsAffected, result.Error
}

// DeleteByGuestAndCourse misafirin bir etaptaki pairingini siler.
func (r *PairingRepository) DeleteByGuestAndCourse(ctx context.Context, planID, guestPartyID uint, course models.Course) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND guest_party_id = ? AND course = ?", planID, guestPartyID, course).
		Delete(&models.Pairing{})
	return result.RowsAffected, result.Error
}

// DeleteByHost partinin ev sahibi olduğu tüm pairingleri siler.
func (r *PairingRepository) DeleteByHost(ctx context.Context, planID, hostPartyID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND host_party_id = ?", planID, hostPartyID).
		Delete(&models.Pairing{})
	return result.RowsAffected, result.Error
}

// DeleteByPlanAndCourses planın belirli etaplardaki tüm pairinglerini siler.
// Yeniden eşleştirmede dondurulmamış etapları temizlemek için kullanılır.
func (r *PairingRepository) DeleteByPlanAndCourses(ctx context.Context, planID uint, courses []models.Course) (int64, error) {
	if len(courses) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND course IN ?", planID, courses).
		Delete(&models.Pairing{})
	return result.RowsAffected, result.Error
}

// RepointHost ev sahipliği devrinde pairinglerin host tarafını yeni partiye çevirir.
func (r *PairingRepository) RepointHost(ctx context.Context, planID, fromHostID, toHostID uint, courses []models.Course) (int64, error) {
	if len(courses) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Pairing{}).
		Where("plan_id = ? AND host_party_id = ? AND course IN ?", planID, fromHostID, courses).
		Update("host_party_id", toHostID)
	return result.RowsAffected, result.Error
}

var _ IPairingRepository = (*PairingRepository)(nil)
