package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound aranan kayıt bulunamadığında tüm repository'lerin döndürdüğü
// ortak hata.
var ErrNotFound = errors.New("kayıt bulunamadı")

// IBaseRepository tüm varlıklar için ortak CRUD işlemleri.
type IBaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context) (int64, error)
	SetAllowedSortColumns(columns []string)
	AllowedSortColumn(column string) bool
}

// BaseRepository IBaseRepository'nin GORM implementasyonu.
type BaseRepository[T any] struct {
	db                 *gorm.DB
	allowedSortColumns map[string]bool
}

// NewBaseRepository verilen bağlantı (veya transaction) üzerinde çalışan bir
// base repository oluşturur.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db, allowedSortColumns: map[string]bool{}}
}

// SetAllowedSortColumns sıralamaya izin verilen sütunları belirler.
func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	r.allowedSortColumns = make(map[string]bool, len(columns))
	for _, c := range columns {
		r.allowedSortColumns[c] = true
	}
}

// AllowedSortColumn sütun sıralamada kullanılabilir mi?
func (r *BaseRepository[T]) AllowedSortColumn(column string) bool {
	return r.allowedSortColumns[column]
}

// Create yeni kaydı oluşturur.
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// FindByID kaydı birincil anahtarla bulur.
func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// Save kaydı bütünüyle günceller.
func (r *BaseRepository[T]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

// Count toplam kayıt sayısını döndürür.
func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var entity T
	var count int64
	err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error
	return count, err
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)
