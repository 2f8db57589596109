package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

func (q *Queries) GetShift(ctx context.Context, id domain.ID) (*domain.Shift, error) {
	query := `
		SELECT company_id, name, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS'), deleted_at, created_at
		FROM shifts WHERE id = $1
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	var deletedAt sql.NullTime
	dst := []any{(*int64)(&shift.CompanyID), &shift.Name, &shift.StartTime, &shift.EndTime, &deletedAt, &shift.CreatedAt}
	if err := q.db.QueryRowContext(ctx, query, int64(id)).Scan(dst...); err != nil {
		return nil, translate(err)
	}
	shift.DeletedAt = nullTimePtr(deletedAt)

	return shift, nil
}

func (q *Queries) CreateShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (company_id, name, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	args := []any{int64(shift.CompanyID), shift.Name, shift.StartTime, shift.EndTime}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan((*int64)(&shift.ID), &shift.CreatedAt); err != nil {
		return translate(err)
	}

	return nil
}
