package services

import (
	"context"
	"errors"
	"fmt"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/queryparams"
	"sofra.link/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventServiceError özel servis hataları
type EventServiceError string

func (e EventServiceError) Error() string { return string(e) }

const (
	ErrEventNotFound       EventServiceError = "etkinlik bulunamadı"
	ErrEventCreationFailed EventServiceError = "etkinlik oluşturulamadı"
	ErrEventUpdateFailed   EventServiceError = "etkinlik güncellenemedi"
	ErrEventInvalidInput   EventServiceError = "geçersiz girdi verisi"
	ErrEventTitleRequired  EventServiceError = "etkinlik başlığı zorunludur"
	ErrEventTimesRequired  EventServiceError = "üç etabın başlangıç saatleri zorunludur"
	ErrEventTimesOrder     EventServiceError = "etap saatleri başlangıç < ana yemek < tatlı sırasında olmalı"
	ErrEventSeatsInvalid   EventServiceError = "ev sahibi kapasitesi pozitif olmalı"
)

// IEventService etkinlik işlemleri için arayüz.
type IEventService interface {
	CreateEvent(ctx context.Context, detail models.EventDetail) (*models.Event, error)
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	GetEventsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateEvent(ctx context.Context, id uint, detail models.EventDetail, isEnabled bool) error
	SetCourseOverride(ctx context.Context, eventID uint, override models.CourseTimingOverride) error
	DeleteEvent(ctx context.Context, id uint) error
}

// EventService IEventService arayüzünü uygular.
type EventService struct {
	repo repositories.IEventRepository
	db   *gorm.DB
}

// NewEventService yeni bir EventService örneği oluşturur.
func NewEventService() IEventService {
	return &EventService{
		repo: repositories.NewEventRepository(),
		db:   configsdatabase.GetDB(),
	}
}

// ValidateEventDetail temel validasyonları yapar.
func ValidateEventDetail(detail models.EventDetail) error {
	if detail.Title == "" {
		return ErrEventTitleRequired
	}
	if detail.StarterAt.IsZero() || detail.MainAt.IsZero() || detail.DessertAt.IsZero() {
		return ErrEventTimesRequired
	}
	if !detail.StarterAt.Before(detail.MainAt) || !detail.MainAt.Before(detail.DessertAt) {
		return ErrEventTimesOrder
	}
	if detail.SeatsPerHost <= 0 {
		return ErrEventSeatsInvalid
	}
	if detail.TeasingLeadMin < 0 || detail.Clue1LeadMin < 0 || detail.Clue2LeadMin < 0 ||
		detail.StreetLeadMin < 0 || detail.HouseNumberLeadMin < 0 {
		return fmt.Errorf("%w: lead dakikaları negatif olamaz", ErrEventInvalidInput)
	}
	return nil
}

// CreateEvent yeni bir etkinlik oluşturur.
func (s *EventService) CreateEvent(ctx context.Context, detail models.EventDetail) (*models.Event, error) {
	if err := ValidateEventDetail(detail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventInvalidInput, err)
	}

	event := models.Event{
		IsEnabled: true,
		Detail:    detail,
	}
	if err := s.repo.Create(ctx, &event); err != nil {
		configslog.Log.Error("CreateEvent failed", zap.Error(err))
		return nil, ErrEventCreationFailed
	}

	configslog.SLog.Infof("Etkinlik oluşturuldu: ID %d, Başlık: %s", event.ID, event.Detail.Title)
	return &event, nil
}

// GetEventByID etkinliği detay ve ezmelerle getirir.
func (s *EventService) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// GetEventsPaginated etkinlikleri sayfalayarak getirir.
func (s *EventService) GetEventsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()

	events, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}

	return &queryparams.PaginatedResult{
		Data: events,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page, PerPage: params.PerPage,
			TotalItems: totalCount, TotalPages: queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}, nil
}

// UpdateEvent mevcut etkinliği ve detayını günceller.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, detail models.EventDetail, isEnabled bool) error {
	if err := ValidateEventDetail(detail); err != nil {
		return fmt.Errorf("%w: %v", ErrEventInvalidInput, err)
	}
	if id == 0 {
		return fmt.Errorf("%w: geçersiz etkinlik ID", ErrEventInvalidInput)
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewEventRepositoryTx(tx)

		var existing models.Event
		if err := tx.Preload("Detail").First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		existing.IsEnabled = isEnabled

		existingDetail := existing.Detail
		existingDetail.Title = detail.Title
		existingDetail.Description = detail.Description
		existingDetail.EventDate = detail.EventDate
		existingDetail.City = detail.City
		existingDetail.StarterAt = detail.StarterAt
		existingDetail.MainAt = detail.MainAt
		existingDetail.DessertAt = detail.DessertAt
		existingDetail.SeatsPerHost = detail.SeatsPerHost
		existingDetail.TeasingLeadMin = detail.TeasingLeadMin
		existingDetail.Clue1LeadMin = detail.Clue1LeadMin
		existingDetail.Clue2LeadMin = detail.Clue2LeadMin
		existingDetail.StreetLeadMin = detail.StreetLeadMin
		existingDetail.HouseNumberLeadMin = detail.HouseNumberLeadMin
		existingDetail.DistanceAdjust = detail.DistanceAdjust

		if err := repoTx.UpdateDetail(ctx, &existingDetail); err != nil {
			return ErrEventUpdateFailed
		}
		if err := repoTx.Update(ctx, &existing); err != nil {
			return ErrEventUpdateFailed
		}
		return nil
	})

	if txErr != nil {
		configslog.Log.Error("UpdateEvent transaction failed", zap.Uint("id", id), zap.Error(txErr))
		return txErr
	}
	configslog.SLog.Infof("Etkinlik güncellendi: ID %d", id)
	return nil
}

// SetCourseOverride bir etabın zamanlama ezmesini kaydeder. Zarf zamanlarının
// yenilenmesi (RefreshEnvelopeSchedules) çağıranın takdirindedir.
func (s *EventService) SetCourseOverride(ctx context.Context, eventID uint, override models.CourseTimingOverride) error {
	if eventID == 0 || !override.Course.Valid() {
		return fmt.Errorf("%w: geçersiz etkinlik veya etap", ErrEventInvalidInput)
	}

	var existing models.CourseTimingOverride
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND course = ?", eventID, override.Course).
		First(&existing).Error
	switch {
	case err == nil:
		override.ID = existing.ID
		override.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	override.EventID = eventID
	if err := s.repo.SaveOverride(ctx, &override); err != nil {
		configslog.Log.Error("SetCourseOverride failed", zap.Uint("event_id", eventID), zap.Error(err))
		return ErrEventUpdateFailed
	}
	return nil
}

// DeleteEvent etkinliği siler (soft delete).
func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, event); err != nil {
		return err
	}
	configslog.SLog.Infof("Etkinlik silindi: ID %d", id)
	return nil
}

var _ IEventService = (*EventService)(nil)
