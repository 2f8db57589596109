// Package schedulingtest 提供内存版的 scheduling.Store，用于测试
package schedulingtest

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/scheduling"
)

// MemStore 模拟 PostgreSQL 的行为
//
// 每个事务读取提交时的快照，写入在提交时重新检查排他约束和唯一约束。
// Serializable 为 true 时事务之间完全串行，相当于 SERIALIZABLE 隔离级别。
type MemStore struct {
	Serializable bool
	// BeforeCommit 在事务提交前调用，可用于构造并发场景
	BeforeCommit func()
	// Err 非空时 InTx 直接返回该错误
	Err error
	// InsertErr 非空时 InsertAssignments 返回该错误
	InsertErr error

	txMu sync.Mutex

	mu          sync.Mutex
	nextID      domain.ID
	shifts      map[domain.ID]*domain.Shift
	users       map[domain.ID]domain.User
	assignments map[domain.ID]*domain.ShiftAssignment
}

var _ scheduling.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		Serializable: true,
		shifts:       make(map[domain.ID]*domain.Shift),
		users:        make(map[domain.ID]domain.User),
		assignments:  make(map[domain.ID]*domain.ShiftAssignment),
	}
}

func (s *MemStore) allocID() domain.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// AddShift 直接写入一个班次，ID 为 0 时自动分配
func (s *MemStore) AddShift(shift domain.Shift) *domain.Shift {
	if shift.ID == 0 {
		shift.ID = s.allocID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if shift.ID > s.nextID {
		s.nextID = shift.ID
	}
	s.shifts[shift.ID] = &shift
	c := shift
	return &c
}

// AddUser 写入一个员工，员工 ID 与班次、排班的 ID 互不影响
func (s *MemStore) AddUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// AddWorkers 为公司批量写入员工
func (s *MemStore) AddWorkers(companyID domain.ID, ids ...domain.ID) {
	for _, id := range ids {
		s.AddUser(domain.User{ID: id, CompanyID: companyID, IsActive: true})
	}
}

// AddAssignment 直接写入一条排班，不检查约束
func (s *MemStore) AddAssignment(a domain.ShiftAssignment) *domain.ShiftAssignment {
	if a.ID == 0 {
		a.ID = s.allocID()
	}
	if a.Status == "" {
		a.Status = domain.AssignmentStatusActive
	}
	if a.Version == 0 {
		a.Version = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID > s.nextID {
		s.nextID = a.ID
	}
	s.assignments[a.ID] = a.Clone()
	return a.Clone()
}

func (s *MemStore) Assignment(id domain.ID) (*domain.ShiftAssignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Assignments 返回所有已提交的排班（包括已软删除的），按 ID 排序
func (s *MemStore) Assignments() []*domain.ShiftAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ShiftAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.ShiftAssignment) int {
		return int(a.ID - b.ID)
	})
	return out
}

func (s *MemStore) InTx(ctx context.Context, fn func(q scheduling.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Err != nil {
		return s.Err
	}

	if s.Serializable {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	tx := &memTx{
		store:        s,
		shifts:       make(map[domain.ID]domain.Shift, len(s.shifts)),
		users:        make(map[domain.ID]domain.User, len(s.users)),
		assignments:  make(map[domain.ID]*domain.ShiftAssignment, len(s.assignments)),
		written:      make(map[domain.ID]struct{}),
		baseVersions: make(map[domain.ID]int32),
	}
	for id, shift := range s.shifts {
		tx.shifts[id] = *shift
	}
	for id, user := range s.users {
		tx.users[id] = user
	}
	for id, a := range s.assignments {
		tx.assignments[id] = a.Clone()
	}
	s.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	return s.commit(tx)
}

func (s *MemStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[domain.ID]*domain.ShiftAssignment, len(s.assignments)+len(tx.written))
	for id, a := range s.assignments {
		staged[id] = a
	}

	ids := make([]domain.ID, 0, len(tx.written))
	for id := range tx.written {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if base, ok := tx.baseVersions[id]; ok {
			committed, exists := s.assignments[id]
			if !exists || committed.Version != base {
				return domain.ErrSerializationFailure
			}
		}
		staged[id] = tx.assignments[id].Clone()
	}

	for _, id := range ids {
		if err := checkConstraints(staged, staged[id]); err != nil {
			return err
		}
	}

	s.assignments = staged
	return nil
}

// checkConstraints 对应数据库中的 CHECK、EXCLUDE 约束和部分唯一索引
func checkConstraints(all map[domain.ID]*domain.ShiftAssignment, a *domain.ShiftAssignment) error {
	if !a.Range().Valid() {
		return domain.ErrInvalidRangeViolation
	}
	if !a.IsActive() {
		return nil
	}

	for _, other := range all {
		if other.ID == a.ID || !other.IsActive() || other.UserID != a.UserID {
			continue
		}
		if other.Range().Overlaps(a.Range()) {
			return domain.ErrOverlapViolation
		}
		if other.ShiftID == a.ShiftID {
			return domain.ErrDuplicateViolation
		}
	}
	return nil
}

type memTx struct {
	store        *MemStore
	shifts       map[domain.ID]domain.Shift
	users        map[domain.ID]domain.User
	assignments  map[domain.ID]*domain.ShiftAssignment
	written      map[domain.ID]struct{}
	baseVersions map[domain.ID]int32
}

func (tx *memTx) GetShift(ctx context.Context, id domain.ID) (*domain.Shift, error) {
	shift, ok := tx.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &shift, nil
}

func (tx *memTx) GetAssignment(ctx context.Context, id domain.ID) (*domain.ShiftAssignment, error) {
	a, ok := tx.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a.Clone(), nil
}

func (tx *memTx) ListCompanyWorkers(ctx context.Context, companyID domain.ID, workerIDs []domain.ID) ([]domain.ID, error) {
	out := make([]domain.ID, 0)
	for _, id := range workerIDs {
		if user, ok := tx.users[id]; ok && user.CompanyID == companyID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (tx *memTx) ListActiveWorkersOnShift(ctx context.Context, shiftID domain.ID, workerIDs []domain.ID, excludeID domain.ID) ([]domain.ID, error) {
	out := make([]domain.ID, 0)
	for _, a := range tx.assignments {
		if a.ID == excludeID || !a.IsActive() || a.ShiftID != shiftID {
			continue
		}
		if slices.Contains(workerIDs, a.UserID) {
			out = append(out, a.UserID)
		}
	}
	return out, nil
}

func (tx *memTx) ListOverlappingWorkers(ctx context.Context, workerIDs []domain.ID, r domain.DateRange, excludeID domain.ID) ([]domain.ID, error) {
	out := make([]domain.ID, 0)
	for _, a := range tx.assignments {
		if a.ID == excludeID || !a.IsActive() {
			continue
		}
		if slices.Contains(workerIDs, a.UserID) && a.Range().Overlaps(r) {
			out = append(out, a.UserID)
		}
	}
	return out, nil
}

func (tx *memTx) InsertAssignments(ctx context.Context, assignments []*domain.ShiftAssignment) error {
	if tx.store.InsertErr != nil {
		return tx.store.InsertErr
	}
	for _, a := range assignments {
		if _, ok := tx.users[a.UserID]; !ok {
			return domain.ErrUnknownReference
		}
	}
	for _, a := range assignments {
		a.ID = tx.store.allocID()
		a.Version = 1
		tx.assignments[a.ID] = a.Clone()
		tx.written[a.ID] = struct{}{}
	}
	return nil
}

func (tx *memTx) UpdateAssignment(ctx context.Context, a *domain.ShiftAssignment) error {
	existing, ok := tx.assignments[a.ID]
	if !ok || existing.DeletedAt != nil || existing.Version != a.Version {
		return sql.ErrNoRows
	}
	if _, ok := tx.baseVersions[a.ID]; !ok {
		tx.baseVersions[a.ID] = existing.Version
	}
	a.Version++
	tx.assignments[a.ID] = a.Clone()
	tx.written[a.ID] = struct{}{}
	return nil
}

func (tx *memTx) SoftDeleteAssignment(ctx context.Context, a *domain.ShiftAssignment) error {
	return tx.UpdateAssignment(ctx, a)
}

func (tx *memTx) ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.ShiftAssignment, int64, error) {
	matched := make([]*domain.ShiftAssignment, 0)
	for _, a := range tx.assignments {
		if a.DeletedAt != nil {
			continue
		}
		if filter.ShiftID != nil && a.ShiftID != *filter.ShiftID {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.CompanyID != nil {
			shift, ok := tx.shifts[a.ShiftID]
			if !ok || shift.CompanyID != *filter.CompanyID {
				continue
			}
		}
		matched = append(matched, a.Clone())
	}

	slices.SortFunc(matched, func(a, b *domain.ShiftAssignment) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})

	total := int64(len(matched))
	offset := filter.Offset()
	if offset >= len(matched) {
		return []*domain.ShiftAssignment{}, total, nil
	}
	end := min(offset+filter.PageSize, len(matched))
	return matched[offset:end], total, nil
}
