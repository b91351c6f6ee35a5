package postgres

import (
	"errors"

	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

const defaultPageSize = 50

// applyPagination pages a query. A zero limit means the default page size
// and a negative one means no limit.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	switch {
	case limit == 0:
		query = query.Limit(defaultPageSize)
	case limit > 0:
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	default:
		return err
	}
}
