package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/cache"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/scheduling"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}

// parseOptionalDate 解析已经通过 datetime 校验的日期
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) readPlanInput(w http.ResponseWriter, r *http.Request) (scheduling.PlanInput, bool) {
	var req struct {
		WorkerIDs []domain.ID `json:"workerIds" validate:"required,min=1,dive,gt=0"`
		RoleID    domain.ID   `json:"roleId" validate:"required,gt=0"`
		StartDate string      `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate   *string     `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		Notes     *string     `json:"notes" validate:"omitempty,max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return scheduling.PlanInput{}, false
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return scheduling.PlanInput{}, false
	}

	startDate, err := domain.ParseDate(req.StartDate)
	if err != nil {
		h.badRequest(w, r, err)
		return scheduling.PlanInput{}, false
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		h.badRequest(w, r, err)
		return scheduling.PlanInput{}, false
	}

	return scheduling.PlanInput{
		CompanyID: r.Context().Value(CompanyIDCtx).(domain.ID),
		ShiftID:   r.Context().Value(ShiftIDCtx).(domain.ID),
		WorkerIDs: req.WorkerIDs,
		RoleID:    req.RoleID,
		StartDate: startDate,
		EndDate:   endDate,
		Notes:     req.Notes,
	}, true
}

func planResponse(result *domain.PlanResult) (int, Response) {
	switch result.Outcome {
	case domain.PlanOutcomeFullyRejected:
		return http.StatusConflict, Response{Success: false, Message: "所有员工均存在冲突，未创建任何排班", Data: result}
	case domain.PlanOutcomePartiallyCreated:
		return http.StatusCreated, Response{Success: true, Message: fmt.Sprintf("已创建 %d 条排班，跳过 %d 名存在冲突的员工", result.Created, result.Skipped), Data: result}
	default:
		return http.StatusCreated, Response{Success: true, Message: fmt.Sprintf("已创建 %d 条排班", result.Created), Data: result}
	}
}

func (h *Handler) CreateShiftAssignments(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readPlanInput(w, r)
	if !ok {
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	scope := fmt.Sprintf("%d_%d", in.CompanyID, in.ShiftID)
	useIdempotency := h.idempotency != nil && idempotencyKey != ""

	var fingerprint string
	if useIdempotency {
		payload, err := json.Marshal(in)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		fingerprint = cache.Fingerprint(payload)

		stored, err := h.idempotency.Begin(r.Context(), scope, idempotencyKey, fingerprint)
		switch {
		case errors.Is(err, cache.ErrMismatch):
			h.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		case errors.Is(err, cache.ErrInProgress):
			h.errorResponse(w, r, http.StatusConflict, err.Error())
			return
		case err != nil:
			slog.Warn("无法读取幂等缓存", "key", idempotencyKey, "error", err)
			useIdempotency = false
		case stored != nil:
			h.writeRawJSON(w, r, stored.Status, stored.Body)
			return
		}
	}

	completed := false
	if useIdempotency {
		defer func() {
			if completed {
				return
			}
			// 请求没有产生可缓存的响应，释放幂等键让客户端可以重试
			if err := h.idempotency.Release(context.WithoutCancel(r.Context()), scope, idempotencyKey); err != nil {
				slog.Warn("无法释放幂等键", "key", idempotencyKey, "error", err)
			}
		}()
	}

	result, err := h.service.Plan(r.Context(), in)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	status, resp := planResponse(result)
	body, err := json.Marshal(resp)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if useIdempotency {
		if err := h.idempotency.Complete(context.WithoutCancel(r.Context()), scope, idempotencyKey, fingerprint, &cache.StoredResponse{Status: status, Body: body}); err != nil {
			slog.Warn("无法写入幂等缓存", "key", idempotencyKey, "error", err)
		} else {
			completed = true
		}
	}

	h.publish(r, domain.AssignmentCreated, result.Assignments...)
	h.writeRawJSON(w, r, status, body)
}

func (h *Handler) PreviewShiftAssignments(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readPlanInput(w, r)
	if !ok {
		return
	}

	result, err := h.service.Preview(r.Context(), in)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "冲突检测完成", result)
}

func (h *Handler) GetShiftAssignment(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(ShiftAssignmentCtx).(*domain.ShiftAssignment)

	h.successResponse(w, r, "获取排班成功", a)
}

func (h *Handler) UpdateShiftAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate    *string    `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
		EndDate      *string    `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		ClearEndDate bool       `json:"clearEndDate"`
		Status       *string    `json:"status" validate:"omitempty,oneof=active inactive"`
		Notes        *string    `json:"notes" validate:"omitempty,max=1000"`
		RoleID       *domain.ID `json:"roleId" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	in := scheduling.UpdateInput{
		ClearEndDate: req.ClearEndDate,
		Notes:        req.Notes,
		RoleID:       req.RoleID,
	}

	var err error
	if in.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if in.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Status != nil {
		status := domain.AssignmentStatus(*req.Status)
		in.Status = &status
	}

	a := r.Context().Value(ShiftAssignmentCtx).(*domain.ShiftAssignment)
	updated, err := h.service.Update(r.Context(), a.ID, in)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.publish(r, domain.AssignmentUpdated, updated)
	h.successResponse(w, r, "更新排班成功", updated)
}

func (h *Handler) ToggleShiftAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(ShiftAssignmentCtx).(*domain.ShiftAssignment)

	toggled, err := h.service.ToggleStatus(r.Context(), a.ID)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.publish(r, domain.AssignmentToggled, toggled)
	h.successResponse(w, r, "切换排班状态成功", toggled)
}

func (h *Handler) DeleteShiftAssignment(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(ShiftAssignmentCtx).(*domain.ShiftAssignment)

	deleted, err := h.service.Delete(r.Context(), a.ID)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.publish(r, domain.AssignmentDeleted, deleted)
	h.successResponse(w, r, "删除排班成功", deleted)
}

type assignmentPage struct {
	Assignments []*domain.ShiftAssignment `json:"assignments"`
	Total       int64                     `json:"total"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"pageSize"`
}

// readFilter 解析 status、page 和 pageSize 查询参数
func (h *Handler) readFilter(w http.ResponseWriter, r *http.Request) (domain.AssignmentFilter, bool) {
	filter := domain.AssignmentFilter{}
	query := r.URL.Query()

	if s := query.Get("status"); s != "" {
		status := domain.AssignmentStatus(s)
		if !status.Valid() {
			h.errorResponse(w, r, http.StatusBadRequest, "status 只能为 active 或 inactive")
			return filter, false
		}
		filter.Status = &status
	}

	for name, dst := range map[string]*int{"page": &filter.Page, "pageSize": &filter.PageSize} {
		s := query.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			h.errorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("%s 必须为正整数", name))
			return filter, false
		}
		*dst = v
	}

	filter.Normalize()
	return filter, true
}

func (h *Handler) listShiftAssignments(w http.ResponseWriter, r *http.Request, filter domain.AssignmentFilter) {
	assignments, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班列表成功", assignmentPage{
		Assignments: assignments,
		Total:       total,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	})
}

func (h *Handler) GetShiftAssignments(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.readFilter(w, r)
	if !ok {
		return
	}

	companyID := r.Context().Value(CompanyIDCtx).(domain.ID)
	shiftID := r.Context().Value(ShiftIDCtx).(domain.ID)
	filter.CompanyID = &companyID
	filter.ShiftID = &shiftID

	h.listShiftAssignments(w, r, filter)
}

func (h *Handler) GetCompanyShiftAssignments(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.readFilter(w, r)
	if !ok {
		return
	}

	companyID := r.Context().Value(CompanyIDCtx).(domain.ID)
	filter.CompanyID = &companyID

	h.listShiftAssignments(w, r, filter)
}

func (h *Handler) GetWorkerShiftAssignments(w http.ResponseWriter, r *http.Request) {
	workerID, err := domain.ParseID(chi.URLParam(r, "workerID"))
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "员工ID无效")
		return
	}

	filter, ok := h.readFilter(w, r)
	if !ok {
		return
	}

	companyID := r.Context().Value(CompanyIDCtx).(domain.ID)
	filter.CompanyID = &companyID
	filter.UserID = &workerID

	h.listShiftAssignments(w, r, filter)
}
