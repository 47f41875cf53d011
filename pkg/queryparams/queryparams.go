package queryparams

import "math"

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	DefaultOrderBy = "desc"
)

// ListParams listeleme uçları için ortak sorgu parametreleri.
type ListParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
	SortBy  string `query:"sort_by"`
	OrderBy string `query:"order_by"`
	Name    string `query:"name"`
	Status  string `query:"status"`
}

// DefaultListParams verilen sıralama sütunuyla varsayılan parametreleri kurar.
func DefaultListParams(sortBy string) ListParams {
	return ListParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		SortBy:  sortBy,
		OrderBy: DefaultOrderBy,
	}
}

// Validate sayfalama limitlerini makul aralığa çeker.
func (p *ListParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.OrderBy != "asc" && p.OrderBy != "desc" {
		p.OrderBy = DefaultOrderBy
	}
}

// CalculateOffset sayfalama offset'ini hesaplar.
func (p ListParams) CalculateOffset() int {
	return (p.Page - 1) * p.PerPage
}

// CalculateTotalPages toplam sayfa sayısını hesaplar.
func CalculateTotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalItems) / float64(perPage)))
}

// PaginationMeta sayfalama üst verisi.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

// PaginatedResult sayfalanmış liste cevabı.
type PaginatedResult struct {
	Data interface{}    `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
