package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/scheduling"
)

var assignmentRowColumns = []string{
	"id", "shift_id", "user_id", "role_id", "start_date", "end_date",
	"status", "notes", "deleted_at", "created_at", "updated_at", "version",
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, db), mock
}

func date(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion", &pgconn.PgError{Code: "23P01", ConstraintName: constraintNoOverlap}, domain.ErrOverlapViolation},
		{"unique on active shift", &pgconn.PgError{Code: "23505", ConstraintName: constraintActiveShiftKey}, domain.ErrDuplicateViolation},
		{"check on date order", &pgconn.PgError{Code: "23514", ConstraintName: constraintDateOrder}, domain.ErrInvalidRangeViolation},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "shift_assignments_user_id_fkey"}, domain.ErrUnknownReference},
		{"serialization", &pgconn.PgError{Code: "40001"}, domain.ErrSerializationFailure},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrSerializationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			assert.ErrorIs(t, got, tt.want)
			var pgErr *pgconn.PgError
			assert.True(t, errors.As(got, &pgErr), "original error must stay reachable")
		})
	}

	other := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.Same(t, other, translate(other))
	assert.ErrorIs(t, translate(sql.ErrNoRows), sql.ErrNoRows)
	assert.NoError(t, translate(nil))
}

func TestInTxCommits(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM shifts WHERE id = \\$1").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"company_id", "name", "start_time", "end_time", "deleted_at", "created_at"}).
			AddRow(int64(1), "早班", "09:00:00", "12:00:00", nil, time.Now()))
	mock.ExpectCommit()

	var shift *domain.Shift
	err := repo.InTx(context.Background(), func(q scheduling.Queries) error {
		var err error
		shift, err = q.GetShift(context.Background(), 3)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ID(1), shift.CompanyID)
	assert.Equal(t, "早班", shift.Name)
	assert.Nil(t, shift.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(q scheduling.Queries) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxSerializationFailureOnCommit(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})

	err := repo.InTx(context.Background(), func(q scheduling.Queries) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrSerializationFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssignmentScansNullableColumns(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("FROM shift_assignments sa WHERE sa.id = \\$1").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns).
			AddRow(int64(42), int64(3), int64(9), int64(2), date("2024-02-01"), nil, "active", nil, nil, now, now, int32(4)))

	a, err := repo.Queries().GetAssignment(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.ID(42), a.ID)
	assert.Equal(t, domain.ID(3), a.ShiftID)
	assert.Equal(t, domain.ID(9), a.UserID)
	assert.Equal(t, domain.AssignmentStatusActive, a.Status)
	assert.Equal(t, date("2024-02-01"), a.StartDate)
	assert.Nil(t, a.EndDate)
	assert.Nil(t, a.Notes)
	assert.Nil(t, a.DeletedAt)
	assert.Equal(t, int32(4), a.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssignmentNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM shift_assignments sa").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))

	_, err := repo.Queries().GetAssignment(context.Background(), 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListOverlappingWorkers(t *testing.T) {
	repo, mock := newMockRepository(t)
	end := date("2024-02-29")

	mock.ExpectQuery(regexp.QuoteMeta("daterange(start_date, end_date, '[]') && daterange($2::date, $3::date, '[]')")).
		WithArgs(int64(7), date("2024-02-01"), end, int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(2)))

	ids, err := repo.Queries().ListOverlappingWorkers(context.Background(), []domain.ID{1, 2}, domain.NewDateRange(date("2024-02-01"), &end), 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOverlappingWorkersUnboundedRange(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT DISTINCT user_id FROM shift_assignments").
		WithArgs(int64(0), date("2024-02-01"), nil, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	ids, err := repo.Queries().ListOverlappingWorkers(context.Background(), []domain.ID{5}, domain.NewDateRange(date("2024-02-01"), nil), 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveWorkersOnShift(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE shift_id = $1 AND id <> $2")).
		WithArgs(int64(3), int64(0), int64(1), int64(2), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)).AddRow(int64(4)))

	ids, err := repo.Queries().ListActiveWorkersOnShift(context.Background(), 3, []domain.ID{1, 2, 4}, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{1, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())

	ids, err = repo.Queries().ListActiveWorkersOnShift(context.Background(), 3, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListCompanyWorkers(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE company_id = $1 AND id IN ($2, $3, $4)")).
		WithArgs(int64(100), int64(1), int64(2), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))

	ids, err := repo.Queries().ListCompanyWorkers(context.Background(), 100, []domain.ID{1, 2, 9})
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())

	ids, err = repo.Queries().ListCompanyWorkers(context.Background(), 100, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInsertAssignmentsForeignKeyViolation(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO shift_assignments").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "shift_assignments_user_id_fkey"})
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(q scheduling.Queries) error {
		return q.InsertAssignments(context.Background(), []*domain.ShiftAssignment{
			{ShiftID: 3, UserID: 404, RoleID: 2, StartDate: date("2024-02-01"), Status: domain.AssignmentStatusActive, CreatedAt: now, UpdatedAt: now},
		})
	})
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAssignmentsExclusionViolation(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()
	notes := "备注"

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO shift_assignments").
		WithArgs(int64(3), int64(1), int64(2), date("2024-02-01"), nil, "active", "备注", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(int64(10), int32(1)))
	mock.ExpectQuery("INSERT INTO shift_assignments").
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: constraintNoOverlap})
	mock.ExpectRollback()

	assignments := []*domain.ShiftAssignment{
		{ShiftID: 3, UserID: 1, RoleID: 2, StartDate: date("2024-02-01"), Status: domain.AssignmentStatusActive, Notes: &notes, CreatedAt: now, UpdatedAt: now},
		{ShiftID: 3, UserID: 2, RoleID: 2, StartDate: date("2024-02-01"), Status: domain.AssignmentStatusActive, CreatedAt: now, UpdatedAt: now},
	}
	err := repo.InTx(context.Background(), func(q scheduling.Queries) error {
		return q.InsertAssignments(context.Background(), assignments)
	})
	assert.ErrorIs(t, err, domain.ErrOverlapViolation)
	assert.Equal(t, domain.ID(10), assignments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentVersionMismatch(t *testing.T) {
	repo, mock := newMockRepository(t)
	a := &domain.ShiftAssignment{ID: 5, RoleID: 2, StartDate: date("2024-02-01"), Status: domain.AssignmentStatusInactive, Version: 3}

	mock.ExpectQuery("UPDATE shift_assignments").
		WithArgs(int64(2), date("2024-02-01"), nil, "inactive", nil, sqlmock.AnyArg(), int64(5), int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err := repo.Queries().UpdateAssignment(context.Background(), a)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteAssignment(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()
	a := &domain.ShiftAssignment{ID: 5, Version: 1, DeletedAt: &now, UpdatedAt: now}

	mock.ExpectQuery("status = 'inactive'").
		WithArgs(sqlmock.AnyArg(), now, int64(5), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(2)))

	require.NoError(t, repo.Queries().SoftDeleteAssignment(context.Background(), a))
	assert.Equal(t, int32(2), a.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAssignmentsFilters(t *testing.T) {
	repo, mock := newMockRepository(t)
	companyID := domain.ID(100)
	status := domain.AssignmentStatusActive
	now := time.Now()
	end := date("2024-03-01")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM shift_assignments sa JOIN shifts s ON s.id = sa.shift_id WHERE sa.deleted_at IS NULL AND s.company_id = $1 AND sa.status = $2")).
		WithArgs(int64(100), "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(21)))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $3 OFFSET $4")).
		WithArgs(int64(100), "active", 20, 20).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns).
			AddRow(int64(1), int64(3), int64(9), int64(2), date("2024-02-01"), end, "active", "夜班", nil, now, now, int32(1)))

	list, total, err := repo.Queries().ListAssignments(context.Background(), domain.AssignmentFilter{
		CompanyID: &companyID,
		Status:    &status,
		Page:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), total)
	require.Len(t, list, 1)
	assert.Equal(t, end, *list[0].EndDate)
	assert.Equal(t, "夜班", *list[0].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
