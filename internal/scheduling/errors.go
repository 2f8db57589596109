package scheduling

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindConflict
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error 是排班引擎对外返回的唯一错误类型
type Error struct {
	Kind    Kind
	Message string

	// 仅在 KindConflict 时可能非空
	DuplicateWorkerIDs   []domain.ID
	OverlappingWorkerIDs []domain.ID
	// 仅在 KindInvalidInput 时可能非空
	UnknownWorkerIDs []domain.ID

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf 返回错误的分类，无法识别的错误一律视为存储失败
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFailure
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func unknownWorkers(ids []domain.ID) *Error {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = id.String()
	}
	return &Error{
		Kind:             KindInvalidInput,
		Message:          "员工不存在或不属于该公司: " + strings.Join(labels, ", "),
		UnknownWorkerIDs: ids,
	}
}

func conflict(msg string, duplicates, overlapping []domain.ID) *Error {
	return &Error{
		Kind:                 KindConflict,
		Message:              msg,
		DuplicateWorkerIDs:   duplicates,
		OverlappingWorkerIDs: overlapping,
	}
}

// classify 把存储层返回的错误转换为引擎错误
func classify(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, domain.ErrOverlapViolation):
		recordWriteConflict("overlap")
		return &Error{Kind: KindConflict, Message: "员工在该日期范围内已有其他有效排班", Err: err}
	case errors.Is(err, domain.ErrDuplicateViolation):
		recordWriteConflict("duplicate")
		return &Error{Kind: KindConflict, Message: "员工已在该班次中存在有效排班", Err: err}
	case errors.Is(err, domain.ErrSerializationFailure):
		recordWriteConflict("serialization")
		return &Error{Kind: KindConflict, Message: "排班被并发修改，请重试", Err: err}
	case errors.Is(err, domain.ErrInvalidRangeViolation):
		return &Error{Kind: KindInvalidInput, Message: "结束日期不能早于开始日期", Err: err}
	case errors.Is(err, domain.ErrUnknownReference):
		return &Error{Kind: KindInvalidInput, Message: "引用的员工或班次不存在", Err: err}
	case errors.Is(err, sql.ErrNoRows):
		return &Error{Kind: KindNotFound, Message: "记录不存在", Err: err}
	default:
		return &Error{Kind: KindStorageFailure, Message: op + "失败", Err: err}
	}
}
