package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/cache"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/scheduling"
)

// EventPublisher 由 mq.Publisher 实现
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AssignmentEvent) error
}

// IdempotencyStore 由 cache.IdempotencyStore 实现
type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key, fingerprint string) (*cache.StoredResponse, error)
	Complete(ctx context.Context, scope, key, fingerprint string, resp *cache.StoredResponse) error
	Release(ctx context.Context, scope, key string) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	service     *scheduling.Service
	translator  ut.Translator
	publisher   EventPublisher
	idempotency IdempotencyStore

	Mux *chi.Mux
}

// NewHandler 中 publisher 和 idempotency 可以为 nil，此时分别不发送事件、不做幂等处理
func NewHandler(cfg *config.Config, svc *scheduling.Service, publisher EventPublisher, idempotency IdempotencyStore) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		service:     svc,
		translator:  trans,
		publisher:   publisher,
		idempotency: idempotency,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Route("/companies/{companyID}", func(r chi.Router) {
		r.Use(h.company)
		r.Get("/assignments", h.GetCompanyShiftAssignments)
		r.Get("/workers/{workerID}/assignments", h.GetWorkerShiftAssignments)

		r.Route("/shifts/{shiftID}/assignments", func(r chi.Router) {
			r.Use(h.shift)
			r.Get("/", h.GetShiftAssignments)
			r.Post("/", h.CreateShiftAssignments)
			r.Post("/preview", h.PreviewShiftAssignments)
		})
	})

	h.Mux.Route("/shift-assignments/{id}", func(r chi.Router) {
		r.Use(h.shiftAssignment)
		r.Get("/", h.GetShiftAssignment)
		r.Patch("/", h.UpdateShiftAssignment)
		r.Delete("/", h.DeleteShiftAssignment)
		r.Post("/toggle-status", h.ToggleShiftAssignmentStatus)
	})
}
