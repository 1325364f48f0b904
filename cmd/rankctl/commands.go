package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-hoops/external/jobqueue"
	"github.com/riskibarqy/fantasy-hoops/internal/config"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/calendar"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"

	rangeLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	showMaxAge    time.Duration
	weekCount     int
	scheduleDelay time.Duration
	scheduleDedup string
)

func init() {
	showCmd.Flags().DurationVar(&showMaxAge, "max-age", 15*time.Minute, "serve a cached board younger than this; 0 forces a recompute")
	teamCmd.Flags().DurationVar(&showMaxAge, "max-age", 15*time.Minute, "serve a cached board younger than this; 0 forces a recompute")
	weeksCmd.Flags().IntVar(&weekCount, "count", 0, "number of weeks to list (default: through the current week)")

	scheduleCmd.Flags().DurationVar(&scheduleDelay, "delay", 0, "delay before QStash calls the recompute route")
	scheduleCmd.Flags().StringVar(&scheduleDedup, "dedup-id", "", "QStash deduplication id (default: one per UTC hour)")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(weeksCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Recompute the leaderboard and store it in the ranking cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, logger, err := runtime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		defer func() { _ = logger.Sync() }()

		board, err := rt.Rankings.Recompute(cmd.Context())
		if err != nil {
			return err
		}
		return writeBoard(cmd.OutOrStdout(), board, outputFormat)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the leaderboard, reusing a fresh cached board when one exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, logger, err := runtime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		defer func() { _ = logger.Sync() }()

		board, err := rt.Rankings.GetOrCompute(cmd.Context(), showMaxAge)
		if err != nil {
			return err
		}
		return writeBoard(cmd.OutOrStdout(), board, outputFormat)
	},
}

var teamCmd = &cobra.Command{
	Use:   "team <team-id>",
	Short: "Print one team's standing with its weekly breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, logger, err := runtime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		defer func() { _ = logger.Sync() }()

		return runTeam(cmd.Context(), cmd.OutOrStdout(), rt.Rankings, args[0], showMaxAge, outputFormat)
	},
}

type teamStandingSource interface {
	GetTeamRanking(ctx context.Context, teamID string, maxAge time.Duration) (usecase.TeamStanding, error)
}

func runTeam(ctx context.Context, w io.Writer, source teamStandingSource, teamID string, maxAge time.Duration, format string) error {
	standing, err := source.GetTeamRanking(ctx, teamID, maxAge)
	if err != nil {
		return err
	}
	return writeTeam(w, standing, format)
}

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List the season's Monday..Sunday week ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := runtime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		count := weekCount
		if count <= 0 {
			count = rt.Rankings.CurrentWeek()
		}
		return writeWeeks(cmd.OutOrStdout(), rt.Rankings.SeasonStart(), count, rt.Rankings.CurrentWeek(), outputFormat)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Ask QStash to call the API's recompute route",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := logging.NewConsole(cfg.LogLevel).Named("rankctl")
		defer func() { _ = logger.Sync() }()

		publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
		}, logger)

		now := time.Now().UTC()
		dedup := scheduleDedup
		if dedup == "" {
			dedup = recomputeDedupID(now)
		}
		job := jobqueue.RecomputeJob{Reason: "rankctl", RequestedAt: now.Format(time.RFC3339)}
		if err := publisher.ScheduleRecompute(cmd.Context(), job, scheduleDelay, dedup); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recompute scheduled dedup=%s delay=%s\n", dedup, scheduleDelay)
		return nil
	},
}

// recomputeDedupID buckets requests by UTC hour so repeated schedules in the
// same hour collapse into one QStash job.
func recomputeDedupID(now time.Time) string {
	return "rankings-recompute-" + now.UTC().Format("2006010215")
}

type boardView struct {
	RunID        string           `json:"runId"`
	CalculatedAt string           `json:"calculatedAt"`
	FromCache    bool             `json:"fromCache"`
	Complete     bool             `json:"complete"`
	FailedCount  int              `json:"failedPlayers"`
	Rankings     []rankingRowView `json:"rankings"`
}

type rankingRowView struct {
	Rank        int     `json:"rank"`
	TeamID      string  `json:"teamId"`
	TeamName    string  `json:"teamName"`
	UserID      string  `json:"userId"`
	TotalPoints float64 `json:"totalPoints"`
}

type weekView struct {
	Week    int     `json:"week"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Points  float64 `json:"points,omitempty"`
	Current bool    `json:"current,omitempty"`
}

func writeBoard(w io.Writer, board ranking.Board, format string) error {
	view := boardView{
		RunID:        board.RunID,
		CalculatedAt: board.CalculatedAt.UTC().Format(time.RFC3339),
		FromCache:    board.FromCache,
		Complete:     board.Diagnostics.Complete(),
		FailedCount:  len(board.Diagnostics.FailedPlayers),
		Rankings:     make([]rankingRowView, 0, len(board.Rankings)),
	}
	for _, row := range board.Rankings {
		view.Rankings = append(view.Rankings, rankingRowView{
			Rank:        row.Rank,
			TeamID:      row.TeamID,
			TeamName:    row.TeamName,
			UserID:      row.UserID,
			TotalPoints: row.TotalPoints,
		})
	}

	switch format {
	case formatJSON:
		return writeJSON(w, view)
	case formatTable, "":
		fmt.Fprintf(w, "run %s calculated %s cache=%t complete=%t\n", view.RunID, view.CalculatedAt, view.FromCache, view.Complete)
		if view.FailedCount > 0 {
			fmt.Fprintf(w, "failed players: %s\n", strings.Join(board.Diagnostics.FailedPlayers, ","))
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tTEAM\tNAME\tOWNER\tPOINTS")
		for _, row := range view.Rankings {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n", row.Rank, row.TeamID, row.TeamName, row.UserID, row.TotalPoints)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTeam(w io.Writer, standing usecase.TeamStanding, format string) error {
	row := standing.Ranking
	weeks := make([]weekView, 0, len(standing.Weeks))
	for _, item := range standing.Weeks {
		weeks = append(weeks, weekView{
			Week:   item.Week,
			Start:  item.WeekStart.UTC().Format(rangeLayout),
			End:    item.WeekEnd.UTC().Format(rangeLayout),
			Points: item.Points,
		})
	}

	switch format {
	case formatJSON:
		return writeJSON(w, struct {
			rankingRowView
			Weeks []weekView `json:"weeks"`
		}{
			rankingRowView: rankingRowView{Rank: row.Rank, TeamID: row.TeamID, TeamName: row.TeamName, UserID: row.UserID, TotalPoints: row.TotalPoints},
			Weeks:          weeks,
		})
	case formatTable, "":
		fmt.Fprintf(w, "#%d %s (%s) owner=%s total=%.1f\n", row.Rank, row.TeamName, row.TeamID, row.UserID, row.TotalPoints)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WEEK\tSTART\tEND\tPOINTS")
		for _, item := range weeks {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", item.Week, item.Start, item.End, item.Points)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeWeeks(w io.Writer, seasonStart time.Time, count, current int, format string) error {
	if count < 1 {
		count = 1
	}
	weeks := make([]weekView, 0, count)
	for week := 1; week <= count; week++ {
		span := calendar.DatesOfWeek(week, seasonStart)
		weeks = append(weeks, weekView{
			Week:    week,
			Start:   span.Start.UTC().Format(rangeLayout),
			End:     span.End.UTC().Format(rangeLayout),
			Current: week == current,
		})
	}

	switch format {
	case formatJSON:
		return writeJSON(w, weeks)
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WEEK\tSTART\tEND\t")
		for _, item := range weeks {
			marker := ""
			if item.Current {
				marker = "*"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", item.Week, item.Start, item.End, marker)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	payload, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}
