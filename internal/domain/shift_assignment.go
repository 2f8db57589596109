package domain

import (
	"time"
)

type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusInactive AssignmentStatus = "inactive"
)

func (s AssignmentStatus) Valid() bool {
	return s == AssignmentStatusActive || s == AssignmentStatusInactive
}

// ShiftAssignment 表示某个员工在一段日期内被安排到某个班次
type ShiftAssignment struct {
	ID        ID               `json:"id"`
	ShiftID   ID               `json:"shiftId"`
	UserID    ID               `json:"userId"`
	RoleID    ID               `json:"roleId"`
	StartDate time.Time        `json:"-"`
	EndDate   *time.Time       `json:"-"`
	Status    AssignmentStatus `json:"status"`
	Notes     *string          `json:"notes"`
	DeletedAt *time.Time       `json:"deletedAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Version   int32            `json:"-"`
}

func (a *ShiftAssignment) Range() DateRange {
	return NewDateRange(a.StartDate, a.EndDate)
}

// IsActive 只有未被软删除且状态为 active 的排班才参与冲突检测
func (a *ShiftAssignment) IsActive() bool {
	return a.Status == AssignmentStatusActive && a.DeletedAt == nil
}

// Clone 返回一份深拷贝，便于在修改失败时保留原值
func (a *ShiftAssignment) Clone() *ShiftAssignment {
	c := *a
	if a.EndDate != nil {
		end := *a.EndDate
		c.EndDate = &end
	}
	if a.Notes != nil {
		notes := *a.Notes
		c.Notes = &notes
	}
	if a.DeletedAt != nil {
		deletedAt := *a.DeletedAt
		c.DeletedAt = &deletedAt
	}
	return &c
}

type AssignmentFilter struct {
	CompanyID *ID
	ShiftID   *ID
	UserID    *ID
	Status    *AssignmentStatus
	Page      int
	PageSize  int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Normalize 把分页参数修正到合法范围内
func (f *AssignmentFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f AssignmentFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
