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

// PartyServiceError özel servis hataları
type PartyServiceError string

func (e PartyServiceError) Error() string { return string(e) }

const (
	ErrPartyNotFound         PartyServiceError = "parti bulunamadı"
	ErrPartyCreationFailed   PartyServiceError = "parti oluşturulamadı"
	ErrPartyUpdateFailed     PartyServiceError = "parti güncellenemedi"
	ErrPartyInvalidInput     PartyServiceError = "geçersiz girdi verisi"
	ErrPartyNameRequired     PartyServiceError = "parti adı zorunludur"
	ErrPartyHeadcountInvalid PartyServiceError = "parti 1 veya 2 kişiden oluşmalı"
	ErrPartyAlreadyCancelled PartyServiceError = "parti zaten iptal edilmiş"
	ErrBlockedPairInvalid    PartyServiceError = "geçersiz engelli çift"
)

// IPartyService parti işlemleri için arayüz.
type IPartyService interface {
	RegisterParty(ctx context.Context, eventID uint, party models.Party) (*models.Party, error)
	GetPartyByID(ctx context.Context, id uint) (*models.Party, error)
	GetPartiesPaginated(ctx context.Context, eventID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateParty(ctx context.Context, id uint, updates models.Party) error
	CancelParty(ctx context.Context, id uint) error
	AddBlockedPair(ctx context.Context, eventID, partyAID, partyBID uint, reason string) (*models.BlockedPair, error)
	RemoveBlockedPair(ctx context.Context, id uint) error
	GetBlockedPairs(ctx context.Context, eventID uint) ([]models.BlockedPair, error)
}

// PartyService IPartyService arayüzünü uygular.
type PartyService struct {
	repo        repositories.IPartyRepository
	blockedRepo repositories.IBlockedPairRepository
	db          *gorm.DB
}

// NewPartyService yeni bir PartyService örneği oluşturur.
func NewPartyService() IPartyService {
	return &PartyService{
		repo:        repositories.NewPartyRepository(),
		blockedRepo: repositories.NewBlockedPairRepository(),
		db:          configsdatabase.GetDB(),
	}
}

// ValidateParty temel validasyonları yapar.
func ValidateParty(party models.Party) error {
	if party.Name == "" {
		return ErrPartyNameRequired
	}
	if party.Headcount != 1 && party.Headcount != 2 {
		return ErrPartyHeadcountInvalid
	}
	if party.CoursePreference != nil && !party.CoursePreference.Valid() {
		return fmt.Errorf("%w: bilinmeyen etap tercihi %q", ErrPartyInvalidInput, *party.CoursePreference)
	}
	return nil
}

// RegisterParty etkinliğe yeni bir parti kaydeder.
func (s *PartyService) RegisterParty(ctx context.Context, eventID uint, party models.Party) (*models.Party, error) {
	if eventID == 0 {
		return nil, fmt.Errorf("%w: geçersiz etkinlik ID", ErrPartyInvalidInput)
	}
	if err := ValidateParty(party); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPartyInvalidInput, err)
	}

	party.EventID = eventID
	party.IsCancelled = false
	party.CancelledAt = nil
	if err := s.repo.Create(ctx, &party); err != nil {
		configslog.Log.Error("RegisterParty failed", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, ErrPartyCreationFailed
	}

	configslog.SLog.Infof("Parti kaydedildi: ID %d, İsim: %s, Kişi: %d", party.ID, party.Name, party.Headcount)
	return &party, nil
}

// GetPartyByID partiyi getirir.
func (s *PartyService) GetPartyByID(ctx context.Context, id uint) (*models.Party, error) {
	party, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return party, nil
}

// GetPartiesPaginated etkinliğin partilerini sayfalayarak getirir.
func (s *PartyService) GetPartiesPaginated(ctx context.Context, eventID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if eventID == 0 {
		return nil, fmt.Errorf("%w: geçersiz etkinlik ID", ErrPartyInvalidInput)
	}
	params.Validate()

	parties, totalCount, err := s.repo.FindAllByEventPaginated(ctx, eventID, params)
	if err != nil {
		return nil, err
	}

	return &queryparams.PaginatedResult{
		Data: parties,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page, PerPage: params.PerPage,
			TotalItems: totalCount, TotalPages: queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}, nil
}

// UpdateParty parti bilgilerini günceller. Adres değişikliğinin yayınlanmış
// plan zarflarına yansıtılması cascade servisinin işidir (address_change).
func (s *PartyService) UpdateParty(ctx context.Context, id uint, updates models.Party) error {
	if err := ValidateParty(updates); err != nil {
		return fmt.Errorf("%w: %v", ErrPartyInvalidInput, err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPartyNotFound
		}
		return err
	}

	existing.Name = updates.Name
	existing.Email = updates.Email
	existing.Headcount = updates.Headcount
	existing.Street = updates.Street
	existing.HouseNumber = updates.HouseNumber
	existing.Teasing = updates.Teasing
	existing.Clue1 = updates.Clue1
	existing.Clue2 = updates.Clue2
	existing.CoursePreference = updates.CoursePreference

	if err := s.repo.Update(ctx, existing); err != nil {
		configslog.Log.Error("UpdateParty failed", zap.Uint("id", id), zap.Error(err))
		return ErrPartyUpdateFailed
	}
	return nil
}

// CancelParty partiyi iptal olarak işaretler. Kayıt silinmez; eşleştirme
// geçmişi korunur. Plan onarımı (guest_dropout / host_dropout) ayrıca
// cascade servisiyle uygulanır.
func (s *PartyService) CancelParty(ctx context.Context, id uint) error {
	err := s.repo.MarkCancelled(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPartyAlreadyCancelled
		}
		configslog.Log.Error("CancelParty failed", zap.Uint("id", id), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Parti iptal edildi: ID %d", id)
	return nil
}

// AddBlockedPair iki partinin asla aynı sofrada buluşmamasını kaydeder.
func (s *PartyService) AddBlockedPair(ctx context.Context, eventID, partyAID, partyBID uint, reason string) (*models.BlockedPair, error) {
	if eventID == 0 || partyAID == 0 || partyBID == 0 || partyAID == partyBID {
		return nil, ErrBlockedPairInvalid
	}

	for _, id := range []uint{partyAID, partyBID} {
		party, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, ErrPartyNotFound
		}
		if party.EventID != eventID {
			return nil, fmt.Errorf("%w: parti %d bu etkinliğe ait değil", ErrBlockedPairInvalid, id)
		}
	}

	pair := models.BlockedPair{EventID: eventID, PartyAID: partyAID, PartyBID: partyBID, Reason: reason}
	if err := s.blockedRepo.Create(ctx, &pair); err != nil {
		configslog.Log.Error("AddBlockedPair failed", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, ErrBlockedPairInvalid
	}
	return &pair, nil
}

// RemoveBlockedPair engelli çifti kaldırır.
func (s *PartyService) RemoveBlockedPair(ctx context.Context, id uint) error {
	if err := s.blockedRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPartyNotFound
		}
		return err
	}
	return nil
}

// GetBlockedPairs etkinliğin engelli çiftlerini getirir.
func (s *PartyService) GetBlockedPairs(ctx context.Context, eventID uint) ([]models.BlockedPair, error) {
	return s.blockedRepo.FindAllByEvent(ctx, eventID)
}

var _ IPartyService = (*PartyService)(nil)
