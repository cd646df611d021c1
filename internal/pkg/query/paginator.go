package query

import (
	"MyFinance/internal/pkg"
)

// Paginate counts every match, then loads one window of rows ordered by the query order.
func Paginate[DBModel any, Domain any](
	q *Query[DBModel],
	page *pkg.PaginationParams,
	converter func(*DBModel) (*Domain, error),
) ([]*Domain, int64, error) {
	page = pkg.NormalizePagination(page)

	total, err := q.Count()
	if err != nil {
		return nil, 0, err
	}

	db := q.build()
	if q.OrderBy() != "" {
		db = db.Order(q.OrderBy())
	}

	var rows []DBModel
	err = db.Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	items, err := convertAll(rows, converter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
