package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
)

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListRankings")
	defer span.End()

	maxAge, err := h.maxAge(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.rankingService.GetOrCompute(ctx, maxAge)
	if err != nil {
		h.logger.ErrorContext(ctx, "get rankings failed", "max_age", maxAge, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board, h.rankingService.CurrentWeek()))
}

func (h *Handler) GetTeamRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetTeamRanking")
	defer span.End()

	path := teamPath{TeamID: strings.TrimSpace(r.PathValue("teamID"))}
	if err := h.validateRequest(ctx, path); err != nil {
		writeError(ctx, w, err)
		return
	}
	maxAge, err := h.maxAge(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	standing, err := h.rankingService.GetTeamRanking(ctx, path.TeamID, maxAge)
	if err != nil {
		h.logger.WarnContext(ctx, "get team ranking failed", "team_id", path.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingToDTO(standing))
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetWeek")
	defer span.End()

	week, err := strconv.Atoi(strings.TrimSpace(r.PathValue("week")))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: week must be an integer", usecase.ErrInvalidInput))
		return
	}
	path := weekPath{Week: week}
	if err := h.validateRequest(ctx, path); err != nil {
		writeError(ctx, w, err)
		return
	}

	weekRange, err := h.rankingService.Week(path.Week)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekRangeDTO{
		Week:    path.Week,
		Start:   formatWeekBound(weekRange.Start),
		End:     formatWeekBound(weekRange.End),
		Current: path.Week == h.rankingService.CurrentWeek(),
	})
}

func (h *Handler) RecomputeRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RecomputeRankings")
	defer span.End()

	board, err := h.rankingService.Recompute(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "rankings recomputed on request", "run_id", board.RunID, "teams", len(board.Rankings))
	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board, h.rankingService.CurrentWeek()))
}
