package pkg

import (
	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// PaginationParams is offset based: Skip rows are dropped, at most Limit are returned.
type PaginationParams struct {
	Skip  int
	Limit int
}

func (p *PaginationParams) Offset() int {
	if p == nil || p.Skip < 0 {
		return 0
	}
	return p.Skip
}

func (p *PaginationParams) Normalize() {
	p.NormalizeWith(DefaultLimit, MaxLimit)
}

func (p *PaginationParams) NormalizeWith(defaultLimit, maxLimit int) {
	if p == nil {
		return
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}

func NormalizePagination(p *PaginationParams) *PaginationParams {
	if p == nil {
		return &PaginationParams{Skip: 0, Limit: DefaultLimit}
	}
	p.Normalize()
	return p
}

type PaginatedResponse[T any] struct {
	Data  []T   `json:"data"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func NewPaginatedResponse[T any](data []T, p *PaginationParams, total int64) *PaginatedResponse[T] {
	p = NormalizePagination(p)
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Data:  data,
		Skip:  p.Skip,
		Limit: p.Limit,
		Total: total,
	}
}

// Paginate counts the base query, then fetches one ordered page and converts every row.
func Paginate[T any, D any](
	query *gorm.DB,
	pagination *PaginationParams,
	orderBy string,
	converter func(*D) (*T, error),
) ([]*T, int64, error) {
	pagination = NormalizePagination(pagination)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []D
	err := query.Order(orderBy).
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*T, 0, len(rows))
	for i := range rows {
		item, err := converter(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}

	return out, total, nil
}

// ListLimits carries the configured default and maximum page size.
type ListLimits struct {
	Default int
	Max     int
}

// Apply returns normalized pagination under l, falling back to the package limits when l is unset.
func (l ListLimits) Apply(p *PaginationParams) *PaginationParams {
	if p == nil {
		p = &PaginationParams{}
	}
	def, max := l.Default, l.Max
	if def < 1 {
		def = DefaultLimit
	}
	if max < 1 {
		max = MaxLimit
	}
	p.NormalizeWith(def, max)
	return p
}
