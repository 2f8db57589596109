package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

// Service 是排班冲突检测与写入的入口，所有写操作都在一个可串行化事务内完成检测和写入
type Service struct {
	store Store
	now   func() time.Time
}

type Option func(*Service)

// WithClock 替换获取当前时间的函数，测试时使用
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) run(ctx context.Context, op string, fn func(q Queries) error) error {
	if err := s.store.InTx(ctx, fn); err != nil {
		e := classify(op, err)
		if e.Kind == KindStorageFailure {
			slog.Error("排班存储操作失败", "op", op, "error", err)
		}
		return e
	}
	return nil
}

// load 读取一条未被软删除的排班
func load(ctx context.Context, q Queries, id domain.ID) (*domain.ShiftAssignment, error) {
	a, err := q.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("排班不存在")
		}
		return nil, err
	}
	if a.DeletedAt != nil {
		return nil, notFound("排班不存在")
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.ShiftAssignment, error) {
	if id <= 0 {
		return nil, invalidInput("无效的排班 ID")
	}

	var a *domain.ShiftAssignment
	err := s.run(ctx, "查询排班", func(q Queries) error {
		var err error
		a, err = load(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List 按公司、班次、员工和状态查询排班，不返回已软删除的记录
func (s *Service) List(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.ShiftAssignment, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, invalidInput("无效的排班状态: %s", *filter.Status)
	}
	filter.Normalize()

	var (
		assignments []*domain.ShiftAssignment
		total       int64
	)
	err := s.run(ctx, "查询排班列表", func(q Queries) error {
		var err error
		assignments, total, err = q.ListAssignments(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}
