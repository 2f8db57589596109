package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) company(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID, err := domain.ParseID(chi.URLParam(r, "companyID"))
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "公司ID无效")
			return
		}

		ctx := context.WithValue(r.Context(), CompanyIDCtx, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) shift(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shiftID, err := domain.ParseID(chi.URLParam(r, "shiftID"))
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "班次ID无效")
			return
		}

		ctx := context.WithValue(r.Context(), ShiftIDCtx, shiftID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) shiftAssignment(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := domain.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "排班ID无效")
			return
		}

		a, err := h.service.Get(r.Context(), id)
		if err != nil {
			h.schedulingError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ShiftAssignmentCtx, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
