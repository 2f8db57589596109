package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries 可以运行在连接池或事务上
type Queries struct {
	db           dbtx
	queryTimeout time.Duration
}

func (q *Queries) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.queryTimeout)
}

// inClause 生成 "$n, $n+1, ..." 形式的占位符，并把 ids 追加到 args 中
func inClause(args []any, ids []domain.ID) (string, []any) {
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, int64(id))
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	return strings.Join(placeholders, ", "), args
}

func scanIDs(rows *sql.Rows) ([]domain.ID, error) {
	defer rows.Close()

	ids := make([]domain.ID, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.ID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// dateArg 把可选日期转换为 SQL 参数，nil 对应 NULL
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.TruncateDate(*t)
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
