package query

func ExecuteAll[DB any, Domain any](
	q *Query[DB],
	converter func(*DB) (*Domain, error),
) ([]*Domain, error) {
	rows, err := q.Find()
	if err != nil {
		return nil, err
	}
	return convertAll(rows, converter)
}

func ExecuteWithLimit[DB any, Domain any](
	q *Query[DB],
	limit int,
	converter func(*DB) (*Domain, error),
) ([]*Domain, error) {
	rows, err := q.FindWithLimit(limit)
	if err != nil {
		return nil, err
	}
	return convertAll(rows, converter)
}

// ExecuteFirst loads one row and converts it, passing gorm.ErrRecordNotFound through.
func ExecuteFirst[DB any, Domain any](
	q *Query[DB],
	converter func(*DB) (*Domain, error),
) (*Domain, error) {
	row, err := q.First()
	if err != nil {
		return nil, err
	}
	return converter(row)
}

func convertAll[DB any, Domain any](rows []DB, converter func(*DB) (*Domain, error)) ([]*Domain, error) {
	items := make([]*Domain, 0, len(rows))
	for i := range rows {
		item, err := converter(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
