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

// IAssignmentRepository ev sahipliği ataması veritabanı işlemleri için arayüz.
type IAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	CreateBatch(ctx context.Context, assignments []models.Assignment) error
	FindByPlan(ctx context.Context, planID uint) ([]models.Assignment, error)
	FindByPlanAndParty(ctx context.Context, planID, partyID uint) ([]models.Assignment, error)
	FindByPlanPartyCourse(ctx context.Context, planID, partyID uint, course models.Course) (*models.Assignment, error)
	DeleteByPlanAndParty(ctx context.Context, planID, partyID uint) (int64, error)
	DeleteByPlanPartyCourses(ctx context.Context, planID, partyID uint, courses []models.Course) (int64, error)
}

// AssignmentRepository IAssignmentRepository'nin GORM implementasyonu.
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewAssignmentRepository() IAssignmentRepository {
	return NewAssignmentRepositoryTx(configsdatabase.GetDB())
}

// NewAssignmentRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewAssignmentRepositoryTx(tx *gorm.DB) IAssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// Create tek bir atama oluşturur.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment == nil || assignment.PlanID == 0 || assignment.PartyID == 0 {
		return errors.New("geçersiz atama")
	}
	return r.db.WithContext(ctx).Create(assignment).Error
}

// CreateBatch atamaları topluca oluşturur.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

// FindByPlan planın tüm atamalarını getirir.
func (r *AssignmentRepository) FindByPlan(ctx context.Context, planID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Order("id").Find(&assignments).Error
	if err != nil {
		configslog.Log.Error("AssignmentRepository.FindByPlan: DB error", zap.Uint("plan_id", planID), zap.Error(err))
		return nil, err
	}
	return assignments, nil
}

// FindByPlanAndParty partinin plandaki atamalarını getirir.
func (r *AssignmentRepository) FindByPlanAndParty(ctx context.Context, planID, partyID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND party_id = ?", planID, partyID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindByPlanPartyCourse tek bir atamayı getirir.
func (r *AssignmentRepository) FindByPlanPartyCourse(ctx context.Context, planID, partyID uint, course models.Course) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND party_id = ? AND course = ?", planID, partyID, course).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// DeleteByPlanAndParty partinin plandaki tüm atamalarını siler.
func (r *AssignmentRepository) DeleteByPlanAndParty(ctx context.Context, planID, partyID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND party_id = ?", planID, partyID).
		Delete(&models.Assignment{})
	return result.RowsAffected, result.Error
}

// DeleteByPlanPartyCourses partinin belirli etaplardaki atamalarını siler.
func (r *AssignmentRepository) DeleteByPlanPartyCourses(ctx context.Context, planID, partyID uint, courses []models.Course) (int64, error) {
	if len(courses) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND party_id = ? AND course IN ?", planID, partyID, courses).
		Delete(&models.Assignment{})
	return result.RowsAffected, result.Error
}

var _ IAssignmentRepository = (*AssignmentRepository)(nil)
