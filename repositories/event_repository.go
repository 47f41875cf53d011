package repositories

import (
	"context"
	"errors"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IEventRepository etkinlik veritabanı işlemleri için arayüz.
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateDetail(ctx context.Context, detail *models.EventDetail) error
	SaveOverride(ctx context.Context, override *models.CourseTimingOverride) error
	Delete(ctx context.Context, event *models.Event) error
}

// EventRepository IEventRepository'nin GORM implementasyonu.
type EventRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Event]
}

// NewEventRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewEventRepository() IEventRepository {
	return NewEventRepositoryTx(configsdatabase.GetDB())
}

// NewEventRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewEventRepositoryTx(tx *gorm.DB) IEventRepository {
	base := NewBaseRepository[models.Event](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "is_enabled"})
	return &EventRepository{db: tx, base: base}
}

// Create yeni bir etkinlik ve detayını oluşturur.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("geçersiz etkinlik")
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID etkinliği detay ve etap ezmeleriyle birlikte getirir.
func (r *EventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Event ID")
	}
	var event models.Event
	err := r.db.WithContext(ctx).Preload("Detail").Preload("Overrides").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

// FindAllPaginated etkinlikleri sayfalayarak getirir.
func (r *EventRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error) {
	var events []models.Event
	var totalCount int64
	db := r.db.WithContext(ctx)

	query := db.Model(&models.Event{})
	if params.Status != "" {
		query = query.Where("events.is_enabled = ?", params.Status == "true")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("EventRepository.Count: DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return events, 0, nil
	}

	orderColumn := "events.created_at"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = "events." + params.SortBy
	}
	query = query.Order(orderColumn + " " + params.OrderBy).
		Preload("Detail").
		Limit(params.PerPage).Offset(params.CalculateOffset())

	if err := query.Find(&events).Error; err != nil {
		configslog.Log.Error("EventRepository.Find: DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return events, totalCount, nil
}

// Update ana Event modelini günceller.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if event == nil || event.ID == 0 {
		return errors.New("güncellenecek etkinlik geçerli değil")
	}
	return r.db.WithContext(ctx).Save(event).Error
}

// UpdateDetail sadece EventDetail modelini günceller.
func (r *EventRepository) UpdateDetail(ctx context.Context, detail *models.EventDetail) error {
	if detail == nil || detail.ID == 0 {
		return errors.New("güncellenecek etkinlik detayı geçerli değil")
	}
	return r.db.WithContext(ctx).Save(detail).Error
}

// SaveOverride etap zamanlama ezmesini oluşturur veya günceller.
func (r *EventRepository) SaveOverride(ctx context.Context, override *models.CourseTimingOverride) error {
	if override == nil || override.EventID == 0 || !override.Course.Valid() {
		return errors.New("geçersiz etap ezmesi")
	}
	return r.db.WithContext(ctx).Save(override).Error
}

// Delete etkinliği siler (soft delete).
func (r *EventRepository) Delete(ctx context.Context, event *models.Event) error {
	if event == nil || event.ID == 0 {
		return errors.New("silinecek etkinlik geçerli değil")
	}
	result := r.db.WithContext(ctx).Delete(event)
	if result.Error != nil {
		configslog.Log.Error("EventRepository.Delete: DB error", zap.Uint("id", event.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var _ IEventRepository = (*EventRepository)(nil)
