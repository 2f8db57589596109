package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

// publish 在写入已经提交之后调用，发送失败只记录日志
func (h *Handler) publish(r *http.Request, typ domain.AssignmentEventType, assignments ...*domain.ShiftAssignment) {
	if h.publisher == nil {
		return
	}

	for _, a := range assignments {
		event := domain.AssignmentEvent{
			Type:       typ,
			Assignment: a,
			OccurredAt: time.Now(),
		}
		if err := h.publisher.Publish(r.Context(), event); err != nil {
			slog.Error("无法发布排班事件", "type", typ, "assignmentId", a.ID, "error", err)
		}
	}
}
