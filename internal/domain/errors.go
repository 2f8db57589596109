package domain

import "errors"

// 存储层在约束被破坏时返回的错误，由 repository 从数据库错误码转换而来
var (
	ErrOverlapViolation      = errors.New("同一员工的有效排班日期重叠")
	ErrDuplicateViolation    = errors.New("员工已在该班次中存在有效排班")
	ErrSerializationFailure  = errors.New("并发事务冲突")
	ErrInvalidRangeViolation = errors.New("结束日期早于开始日期")
	ErrUnknownReference      = errors.New("引用的员工或班次不存在")
)
