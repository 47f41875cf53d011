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

// ErrVersionConflict plan sürümü beklenen değerde değilken mutasyon denendi.
// Aynı plan sürümüne aynı anda tek mutasyon kuralının ihlalini yakalar.
var ErrVersionConflict = errors.New("plan sürümü çakışması: plan bu arada değişmiş")

// IPlanRepository eşleştirme planı veritabanı işlemleri için arayüz.
type IPlanRepository interface {
	Create(ctx context.Context, plan *models.MatchPlan) error
	FindByID(ctx context.Context, id uint) (*models.MatchPlan, error)
	FindByKey(ctx context.Context, key string) (*models.MatchPlan, error)
	FindAllByEvent(ctx context.Context, eventID uint) ([]models.MatchPlan, error)
	BumpVersion(ctx context.Context, planID uint, fromVersion int) error
	UpdateStatus(ctx context.Context, planID uint, status models.PlanStatus) error
	SupersedeOthers(ctx context.Context, eventID uint, keepPlanID uint) error
}

// PlanRepository IPlanRepository'nin GORM implementasyonu.
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewPlanRepository() IPlanRepository {
	return NewPlanRepositoryTx(configsdatabase.GetDB())
}

// NewPlanRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewPlanRepositoryTx(tx *gorm.DB) IPlanRepository {
	return &PlanRepository{db: tx}
}

// Create yeni bir plan kaydı oluşturur.
func (r *PlanRepository) Create(ctx context.Context, plan *models.MatchPlan) error {
	if plan == nil || plan.EventID == 0 || plan.Key == "" {
		return errors.New("geçersiz plan")
	}
	return r.db.WithContext(ctx).Create(plan).Error
}

// FindByID planı birincil anahtarla bulur.
func (r *PlanRepository) FindByID(ctx context.Context, id uint) (*models.MatchPlan, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Plan ID")
	}
	var plan models.MatchPlan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("PlanRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &plan, nil
}

// FindByKey planı public anahtarıyla bulur.
func (r *PlanRepository) FindByKey(ctx context.Context, key string) (*models.MatchPlan, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var plan models.MatchPlan
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindAllByEvent etkinliğin planlarını yeni kayıt önce sırasıyla getirir.
func (r *PlanRepository) FindAllByEvent(ctx context.Context, eventID uint) ([]models.MatchPlan, error) {
	var plans []models.MatchPlan
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id desc").Find(&plans).Error
	if err != nil {
		configslog.Log.Error("PlanRepository.FindAllByEvent: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return plans, nil
}

// BumpVersion plan sürümünü iyimser kilitle artırır: kayıt beklenen sürümde
// değilse ErrVersionConflict döner ve mutasyon uygulanmamalıdır.
func (r *PlanRepository) BumpVersion(ctx context.Context, planID uint, fromVersion int) error {
	result := r.db.WithContext(ctx).Model(&models.MatchPlan{}).
		Where("id = ? AND version = ?", planID, fromVersion).
		Update("version", fromVersion+1)
	if result.Error != nil {
		configslog.Log.Error("PlanRepository.BumpVersion: DB error", zap.Uint("plan_id", planID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateStatus plan durumunu günceller.
func (r *PlanRepository) UpdateStatus(ctx context.Context, planID uint, status models.PlanStatus) error {
	result := r.db.WithContext(ctx).Model(&models.MatchPlan{}).
		Where("id = ?", planID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SupersedeOthers etkinliğin diğer planlarını geçersiz kılınmış olarak işaretler.
func (r *PlanRepository) SupersedeOthers(ctx context.Context, eventID uint, keepPlanID uint) error {
	return r.db.WithContext(ctx).Model(&models.MatchPlan{}).
		Where("event_id = ? AND id <> ? AND status <> ?", eventID, keepPlanID, models.PlanStatusSuperseded).
		Update("status", models.PlanStatusSuperseded).Error
}

var _ IPlanRepository = (*PlanRepository)(nil)
