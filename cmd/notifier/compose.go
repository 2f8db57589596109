package main

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var assignmentTemplate = template.Must(template.ParseFS(templateFS, "templates/assignment.html"))

// errDrop 表示消息无法处理，重新入队也没有意义
var errDrop = errors.New("消息无法处理")

type lookup interface {
	GetUserByID(ctx context.Context, id domain.ID) (*domain.User, error)
	GetShift(ctx context.Context, id domain.ID) (*domain.Shift, error)
}

type notification struct {
	To      string
	Subject string
	Body    string
}

var subjects = map[domain.AssignmentEventType]struct {
	subject string
	summary string
}{
	domain.AssignmentCreated: {"ECNC 假勤系统 - 新的排班", "您被安排了新的班次。"},
	domain.AssignmentUpdated: {"ECNC 假勤系统 - 排班变更", "您的排班信息已更新。"},
	domain.AssignmentToggled: {"ECNC 假勤系统 - 排班状态变更", "您的排班状态已变更。"},
	domain.AssignmentDeleted: {"ECNC 假勤系统 - 排班取消", "您的排班已被取消。"},
}

var statusLabels = map[domain.AssignmentStatus]string{
	domain.AssignmentStatusActive:   "生效中",
	domain.AssignmentStatusInactive: "已停用",
}

func compose(ctx context.Context, body []byte, l lookup) (*notification, error) {
	event := domain.AssignmentEvent{}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", errDrop, err)
	}
	if event.Assignment == nil {
		return nil, fmt.Errorf("%w: 缺少排班信息", errDrop)
	}
	s, ok := subjects[event.Type]
	if !ok {
		return nil, fmt.Errorf("%w: 不支持的事件类型 %s", errDrop, event.Type)
	}

	a := event.Assignment
	user, err := l.GetUserByID(ctx, a.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: 员工 %s 不存在", errDrop, a.UserID)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: 员工 %s 已停用", errDrop, a.UserID)
	}
	shift, err := l.GetShift(ctx, a.ShiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: 班次 %s 不存在", errDrop, a.ShiftID)
		}
		return nil, err
	}

	data := domain.AssignmentMailData{
		Summary:   s.summary,
		FullName:  user.FullName,
		ShiftName: shift.Name,
		ShiftTime: shift.TimeLabel(),
		StartDate: a.StartDate.Format(domain.DateLayout),
		Status:    statusLabels[a.Status],
	}
	if a.EndDate != nil {
		data.EndDate = a.EndDate.Format(domain.DateLayout)
	}
	if a.Notes != nil {
		data.Notes = *a.Notes
	}

	buf := bytes.Buffer{}
	if err := assignmentTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", errDrop, err)
	}

	return &notification{To: user.Email, Subject: s.subject, Body: buf.String()}, nil
}
