package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

const assignmentColumns = `
	sa.id, sa.shift_id, sa.user_id, sa.role_id, sa.start_date, sa.end_date,
	sa.status, sa.notes, sa.deleted_at, sa.created_at, sa.updated_at, sa.version
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*domain.ShiftAssignment, error) {
	a := &domain.ShiftAssignment{}

	var (
		endDate   sql.NullTime
		notes     sql.NullString
		deletedAt sql.NullTime
	)
	dst := []any{
		(*int64)(&a.ID), (*int64)(&a.ShiftID), (*int64)(&a.UserID), (*int64)(&a.RoleID),
		&a.StartDate, &endDate, &a.Status, &notes, &deletedAt, &a.CreatedAt, &a.UpdatedAt, &a.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	a.StartDate = domain.TruncateDate(a.StartDate)
	a.EndDate = nullTimePtr(endDate)
	if a.EndDate != nil {
		end := domain.TruncateDate(*a.EndDate)
		a.EndDate = &end
	}
	a.Notes = nullStringPtr(notes)
	a.DeletedAt = nullTimePtr(deletedAt)

	return a, nil
}

// GetAssignment 返回排班，包括已软删除的记录
func (q *Queries) GetAssignment(ctx context.Context, id domain.ID) (*domain.ShiftAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM shift_assignments sa WHERE sa.id = $1`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	a, err := scanAssignment(q.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		return nil, translate(err)
	}

	return a, nil
}

func (q *Queries) ListActiveWorkersOnShift(ctx context.Context, shiftID domain.ID, workerIDs []domain.ID, excludeID domain.ID) ([]domain.ID, error) {
	if len(workerIDs) == 0 {
		return []domain.ID{}, nil
	}

	args := []any{int64(shiftID), int64(excludeID)}
	in, args := inClause(args, workerIDs)
	query := fmt.Sprintf(`
		SELECT DISTINCT user_id FROM shift_assignments
		WHERE shift_id = $1 AND id <> $2
			AND status = 'active' AND deleted_at IS NULL
			AND user_id IN (%s)
	`, in)

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}

	ids, err := scanIDs(rows)
	return ids, translate(err)
}

// ListOverlappingWorkers 与排他约束使用同一个闭区间表达式，end_date 为 NULL 时上界无限
func (q *Queries) ListOverlappingWorkers(ctx context.Context, workerIDs []domain.ID, r domain.DateRange, excludeID domain.ID) ([]domain.ID, error) {
	if len(workerIDs) == 0 {
		return []domain.ID{}, nil
	}

	args := []any{int64(excludeID), domain.TruncateDate(r.Start), dateArg(r.End)}
	in, args := inClause(args, workerIDs)
	query := fmt.Sprintf(`
		SELECT DISTINCT user_id FROM shift_assignments
		WHERE id <> $1
			AND status = 'active' AND deleted_at IS NULL
			AND daterange(start_date, end_date, '[]') && daterange($2::date, $3::date, '[]')
			AND user_id IN (%s)
	`, in)

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}

	ids, err := scanIDs(rows)
	return ids, translate(err)
}

// InsertAssignments 逐条插入，调用方负责把它放在事务中
func (q *Queries) InsertAssignments(ctx context.Context, assignments []*domain.ShiftAssignment) error {
	query := `
		INSERT INTO shift_assignments (shift_id, user_id, role_id, start_date, end_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version
	`

	for _, a := range assignments {
		ctx, cancel := q.withTimeout(ctx)
		args := []any{
			int64(a.ShiftID), int64(a.UserID), int64(a.RoleID),
			domain.TruncateDate(a.StartDate), dateArg(a.EndDate),
			string(a.Status), stringArg(a.Notes), a.CreatedAt, a.UpdatedAt,
		}
		err := q.db.QueryRowContext(ctx, query, args...).Scan((*int64)(&a.ID), &a.Version)
		cancel()
		if err != nil {
			return translate(err)
		}
	}

	return nil
}

// UpdateAssignment 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (q *Queries) UpdateAssignment(ctx context.Context, a *domain.ShiftAssignment) error {
	query := `
		UPDATE shift_assignments
		SET
			role_id = $1,
			start_date = $2,
			end_date = $3,
			status = $4,
			notes = $5,
			updated_at = $6,
			version = version + 1
		WHERE id = $7 AND version = $8 AND deleted_at IS NULL
		RETURNING version
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	args := []any{
		int64(a.RoleID), domain.TruncateDate(a.StartDate), dateArg(a.EndDate),
		string(a.Status), stringArg(a.Notes), a.UpdatedAt, int64(a.ID), a.Version,
	}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&a.Version); err != nil {
		return translate(err)
	}

	return nil
}

func (q *Queries) SoftDeleteAssignment(ctx context.Context, a *domain.ShiftAssignment) error {
	query := `
		UPDATE shift_assignments
		SET
			status = 'inactive',
			deleted_at = $1,
			updated_at = $2,
			version = version + 1
		WHERE id = $3 AND version = $4 AND deleted_at IS NULL
		RETURNING version
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	args := []any{a.DeletedAt, a.UpdatedAt, int64(a.ID), a.Version}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&a.Version); err != nil {
		return translate(err)
	}

	return nil
}

func assignmentFilterClause(f domain.AssignmentFilter) (string, []any) {
	conds := []string{"sa.deleted_at IS NULL"}
	args := []any{}

	if f.CompanyID != nil {
		args = append(args, int64(*f.CompanyID))
		conds = append(conds, fmt.Sprintf("s.company_id = $%d", len(args)))
	}
	if f.ShiftID != nil {
		args = append(args, int64(*f.ShiftID))
		conds = append(conds, fmt.Sprintf("sa.shift_id = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, int64(*f.UserID))
		conds = append(conds, fmt.Sprintf("sa.user_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("sa.status = $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// ListAssignments 返回一页排班以及满足条件的总数
func (q *Queries) ListAssignments(ctx context.Context, f domain.AssignmentFilter) ([]*domain.ShiftAssignment, int64, error) {
	f.Normalize()
	where, args := assignmentFilterClause(f)

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	var total int64
	countQuery := `SELECT COUNT(*) FROM shift_assignments sa JOIN shifts s ON s.id = sa.shift_id WHERE ` + where
	if err := q.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	args = append(args, f.PageSize, f.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM shift_assignments sa JOIN shifts s ON s.id = sa.shift_id
		WHERE %s
		ORDER BY sa.start_date, sa.id
		LIMIT $%d OFFSET $%d
	`, assignmentColumns, where, len(args)-1, len(args))

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	assignments := make([]*domain.ShiftAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, translate(err)
	}

	return assignments, total, nil
}
