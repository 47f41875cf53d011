package repositories

import (
	"context"
	"errors"
	"time"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/queryparams"
	"sofra.link/pkg/turkishsearch"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IPartyRepository parti veritabanı işlemleri için arayüz.
type IPartyRepository interface {
	Create(ctx context.Context, party *models.Party) error
	FindByID(ctx context.Context, id uint) (*models.Party, error)
	FindAllByEvent(ctx context.Context, eventID uint) ([]models.Party, error)
	FindActiveByEvent(ctx context.Context, eventID uint) ([]models.Party, error)
	FindAllByEventPaginated(ctx context.Context, eventID uint, params queryparams.ListParams) ([]models.Party, int64, error)
	Update(ctx context.Context, party *models.Party) error
	MarkCancelled(ctx context.Context, partyID uint) error
	CountActiveByEvent(ctx context.Context, eventID uint) (int64, error)
}

// PartyRepository IPartyRepository'nin GORM implementasyonu.
type PartyRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Party]
}

// NewPartyRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewPartyRepository() IPartyRepository {
	return NewPartyRepositoryTx(configsdatabase.GetDB())
}

// NewPartyRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewPartyRepositoryTx(tx *gorm.DB) IPartyRepository {
	base := NewBaseRepository[models.Party](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "headcount", "is_cancelled"})
	return &PartyRepository{db: tx, base: base}
}

// Create yeni bir parti kaydı oluşturur.
func (r *PartyRepository) Create(ctx context.Context, party *models.Party) error {
	if party == nil || party.EventID == 0 {
		return errors.New("etkinliği olmayan parti oluşturulamaz")
	}
	return r.db.WithContext(ctx).Create(party).Error
}

// FindByID partiyi birincil anahtarla bulur.
func (r *PartyRepository) FindByID(ctx context.Context, id uint) (*models.Party, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Party ID")
	}
	party, err := r.base.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			configslog.Log.Error("PartyRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		}
		return nil, err
	}
	return party, nil
}

// FindAllByEvent etkinliğin tüm partilerini (iptaller dahil) getirir.
func (r *PartyRepository) FindAllByEvent(ctx context.Context, eventID uint) ([]models.Party, error) {
	var parties []models.Party
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&parties).Error
	if err != nil {
		configslog.Log.Error("PartyRepository.FindAllByEvent: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return parties, nil
}

// FindActiveByEvent yalnızca iptal edilmemiş partileri getirir.
func (r *PartyRepository) FindActiveByEvent(ctx context.Context, eventID uint) ([]models.Party, error) {
	var parties []models.Party
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND is_cancelled = ?", eventID, false).
		Order("id").Find(&parties).Error
	if err != nil {
		configslog.Log.Error("PartyRepository.FindActiveByEvent: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return parties, nil
}

// FindAllByEventPaginated etkinliğin partilerini isim filtresi ve sayfalama
// ile getirir.
func (r *PartyRepository) FindAllByEventPaginated(ctx context.Context, eventID uint, params queryparams.ListParams) ([]models.Party, int64, error) {
	var parties []models.Party
	var totalCount int64
	db := r.db.WithContext(ctx)

	query := db.Model(&models.Party{}).Where("parties.event_id = ?", eventID)
	if params.Name != "" {
		sqlFragment, args := turkishsearch.SQLFilter("parties.name", params.Name)
		query = query.Where(sqlFragment, args...)
	}
	if params.Status != "" {
		query = query.Where("parties.is_cancelled = ?", params.Status == "cancelled")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("PartyRepository.Count: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return parties, 0, nil
	}

	orderColumn := "parties.created_at"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = "parties." + params.SortBy
	}
	query = query.Order(orderColumn + " " + params.OrderBy).
		Limit(params.PerPage).Offset(params.CalculateOffset())

	if err := query.Find(&parties).Error; err != nil {
		configslog.Log.Error("PartyRepository.Find: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, totalCount, err
	}
	return parties, totalCount, nil
}

// Update parti kaydını günceller.
func (r *PartyRepository) Update(ctx context.Context, party *models.Party) error {
	if party == nil || party.ID == 0 {
		return errors.New("güncellenecek parti geçerli değil")
	}
	return r.db.WithContext(ctx).Save(party).Error
}

// MarkCancelled partiyi iptal olarak işaretler. Kayıt silinmez; geçmiş korunur.
func (r *PartyRepository) MarkCancelled(ctx context.Context, partyID uint) error {
	if partyID == 0 {
		return errors.New("geçersiz Party ID")
	}
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Party{}).
		Where("id = ? AND is_cancelled = ?", partyID, false).
		Updates(map[string]interface{}{"is_cancelled": true, "cancelled_at": now})
	if result.Error != nil {
		configslog.Log.Error("PartyRepository.MarkCancelled: DB error", zap.Uint("id", partyID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveByEvent etkinliğin aktif parti sayısını döndürür.
func (r *PartyRepository) CountActiveByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Party{}).
		Where("event_id = ? AND is_cancelled = ?", eventID, false).
		Count(&count).Error
	return count, err
}

var _ IPartyRepository = (*PartyRepository)(nil)
