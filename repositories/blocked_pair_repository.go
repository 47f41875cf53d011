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

// IBlockedPairRepository engelli çift veritabanı işlemleri için arayüz.
type IBlockedPairRepository interface {
	Create(ctx context.Context, pair *models.BlockedPair) error
	FindAllByEvent(ctx context.Context, eventID uint) ([]models.BlockedPair, error)
	Delete(ctx context.Context, id uint) error
}

// BlockedPairRepository IBlockedPairRepository'nin GORM implementasyonu.
type BlockedPairRepository struct {
	db *gorm.DB
}

// NewBlockedPairRepository global bağlantı üzerinde çalışan repository oluşturur.
func NewBlockedPairRepository() IBlockedPairRepository {
	return NewBlockedPairRepositoryTx(configsdatabase.GetDB())
}

// NewBlockedPairRepositoryTx verilen transaction üzerinde çalışan repository oluşturur.
func NewBlockedPairRepositoryTx(tx *gorm.DB) IBlockedPairRepository {
	return &BlockedPairRepository{db: tx}
}

// Create engelli çifti kanonik sırayla (küçük ID önce) oluşturur.
func (r *BlockedPairRepository) Create(ctx context.Context, pair *models.BlockedPair) error {
	if pair == nil || pair.EventID == 0 || pair.PartyAID == 0 || pair.PartyBID == 0 {
		return errors.New("geçersiz engelli çift")
	}
	if pair.PartyAID == pair.PartyBID {
		return errors.New("parti kendisiyle engellenemez")
	}
	pair.Normalize()
	return r.db.WithContext(ctx).Create(pair).Error
}

// FindAllByEvent etkinliğin tüm engelli çiftlerini getirir.
func (r *BlockedPairRepository) FindAllByEvent(ctx context.Context, eventID uint) ([]models.BlockedPair, error) {
	var pairs []models.BlockedPair
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&pairs).Error
	if err != nil {
		configslog.Log.Error("BlockedPairRepository.FindAllByEvent: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return pairs, nil
}

// Delete engelli çifti kaldırır (soft delete).
func (r *BlockedPairRepository) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("geçersiz BlockedPair ID")
	}
	result := r.db.WithContext(ctx).Delete(&models.BlockedPair{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var _ IBlockedPairRepository = (*BlockedPairRepository)(nil)
