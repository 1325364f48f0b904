package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
)

type Handler struct {
	rankingService *usecase.RankingService
	defaultMaxAge  time.Duration
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(rankingService *usecase.RankingService, defaultMaxAge time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		rankingService: rankingService,
		defaultMaxAge:  defaultMaxAge,
		logger:         logger.Named("httpapi"),
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type rankingQuery struct {
	MaxAgeSeconds int `validate:"gte=0,lte=86400"`
}

type weekPath struct {
	Week int `validate:"gte=1,lte=60"`
}

type teamPath struct {
	TeamID string `validate:"required,max=64"`
}

// maxAge reads max_age_seconds, falling back to the configured default.
func (h *Handler) maxAge(ctx context.Context, r *http.Request) (time.Duration, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("max_age_seconds"))
	if raw == "" {
		return h.defaultMaxAge, nil
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: max_age_seconds must be an integer", usecase.ErrInvalidInput)
	}
	query := rankingQuery{MaxAgeSeconds: seconds}
	if err := h.validateRequest(ctx, query); err != nil {
		return 0, err
	}

	return time.Duration(query.MaxAgeSeconds) * time.Second, nil
}
