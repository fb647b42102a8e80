package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print an insights report for a user",
	Long: `Compute one insights report for a user and print it as JSON.
The user's subscription tier is resolved the same way as for API requests.`,
	RunE: runReport,
}

var (
	reportUser string
	reportKind string
)

func init() {
	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "User ID to report on")
	reportCmd.Flags().StringVarP(&reportKind, "kind", "k", "weekly", "Report kind: "+strings.Join(reportKindNames(), ", "))
	_ = reportCmd.MarkFlagRequired("user")
}

// reportFunc computes one report kind
type reportFunc func(ctx context.Context, insights service.InsightsProvider, access models.AccessContext) (any, error)

var reportKinds = map[string]reportFunc{
	"weekly": func(ctx context.Context, insights service.InsightsProvider, access models.AccessContext) (any, error) {
		return insights.WeeklySummary(ctx, access)
	},
	"triggers": func(ctx context.Context, insights service.InsightsProvider, access models.AccessContext) (any, error) {
		return insights.MoodTriggers(ctx, access)
	},
	"recommendations": func(ctx context.Context, insights service.InsightsProvider, access models.AccessContext) (any, error) {
		return insights.Recommendations(ctx, access)
	},
}

func reportKindNames() []string {
	names := make([]string, 0, len(reportKinds))
	for name := range reportKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runReport(cmd *cobra.Command, args []string) error {
	if _, err := uuid.Parse(reportUser); err != nil {
		return fmt.Errorf("invalid --user %q: %w", reportUser, err)
	}
	run, ok := reportKinds[reportKind]
	if !ok {
		return fmt.Errorf("unknown report kind %q (want %s)", reportKind, strings.Join(reportKindNames(), ", "))
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer a.close(appLog)

	report, err := buildReport(ctx, a.access, a.insights, reportUser, run)
	if err != nil {
		return fmt.Errorf("%s report for %s: %w", reportKind, reportUser, err)
	}

	return writeReport(os.Stdout, report)
}

// buildReport resolves the user's tier and runs one report for them
func buildReport(ctx context.Context, access service.AccessProvider, insights service.InsightsProvider, userID string, run reportFunc) (any, error) {
	accessCtx, err := access.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return run(ctx, insights, accessCtx)
}

func writeReport(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
