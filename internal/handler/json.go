package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/scheduling"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

// writeRawJSON 用于写入已经编码好的响应，比如幂等缓存中保存的响应
func (h *Handler) writeRawJSON(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type ConflictData struct {
	DuplicateWorkerIDs   []domain.ID `json:"duplicateWorkerIds"`
	OverlappingWorkerIDs []domain.ID `json:"overlappingWorkerIds"`
}

type UnknownWorkersData struct {
	UnknownWorkerIDs []domain.ID `json:"unknownWorkerIds"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func orEmpty(ids []domain.ID) []domain.ID {
	if ids == nil {
		return []domain.ID{}
	}
	return ids
}

// schedulingError 把排班引擎的错误映射为 HTTP 响应，存储层错误不向调用方暴露细节
func (h *Handler) schedulingError(w http.ResponseWriter, r *http.Request, err error) {
	var e *scheduling.Error
	if !errors.As(err, &e) {
		h.internalServerError(w, r, err)
		return
	}

	switch e.Kind {
	case scheduling.KindInvalidInput:
		if len(e.UnknownWorkerIDs) == 0 {
			h.errorResponse(w, r, http.StatusBadRequest, e.Message)
			return
		}
		h.writeJSON(w, r, http.StatusBadRequest, Response{
			Success: false,
			Message: e.Message,
			Data:    UnknownWorkersData{UnknownWorkerIDs: e.UnknownWorkerIDs},
		})
	case scheduling.KindNotFound:
		h.errorResponse(w, r, http.StatusNotFound, e.Message)
	case scheduling.KindConflict:
		h.writeJSON(w, r, http.StatusConflict, Response{
			Success: false,
			Message: e.Message,
			Data: ConflictData{
				DuplicateWorkerIDs:   orEmpty(e.DuplicateWorkerIDs),
				OverlappingWorkerIDs: orEmpty(e.OverlappingWorkerIDs),
			},
		})
	default:
		h.internalServerError(w, r, err)
	}
}
