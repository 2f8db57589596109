package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/scheduling"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

var _ scheduling.Store = (*Repository)(nil)

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryTimeout() time.Duration {
	return time.Duration(r.cfg.Database.QueryTimeout) * time.Second
}

// Queries 返回不在事务中的查询，用于 notifier 和 seed 等只读或单条写入的场景
func (r *Repository) Queries() *Queries {
	return &Queries{db: r.dbpool, queryTimeout: r.queryTimeout()}
}

// InTx 以 SERIALIZABLE 隔离级别执行 fn
//
// 冲突检测和写入必须在同一个事务中完成，否则两个并发请求可能都通过检测。
// 序列化失败不会自动重试，而是转换为 domain.ErrSerializationFailure 交给调用方处理。
func (r *Repository) InTx(ctx context.Context, fn func(q scheduling.Queries) error) error {
	if d := time.Duration(r.cfg.Database.TransactionTimeout) * time.Second; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	tx, err := r.dbpool.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return translate(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&Queries{db: tx, queryTimeout: r.queryTimeout()}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate(err)
	}

	return nil
}
