package service

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/JonnyWalker81/moodtrack/backend/internal/metrics"
	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/internal/repository"
	"github.com/sourcegraph/conc"
	"golang.org/x/sync/errgroup"
)

const (
	// WeeklyWindowDays is the length of the weekly summary window
	WeeklyWindowDays = 7
	// AnalysisWindowDays is the length of the trigger and recommendation window
	AnalysisWindowDays = 30

	reportKindRecommendations = "recommendations"
)

// InsightsConfig holds the tunables of the insights engine
type InsightsConfig struct {
	// Location is the reference timezone for windows and time-of-day buckets
	Location *time.Location
	// StoreTimeout bounds every event store and insight lookup call
	StoreTimeout time.Duration
	// CacheWriteTimeout bounds the background insight write
	CacheWriteTimeout time.Duration
}

// InsightsService computes weekly summaries, trigger analyses and
// recommendations from a user's check-ins.
type InsightsService struct {
	checkIns repository.CheckInRepository
	insights repository.InsightRepository
	cfg      InsightsConfig
	metrics  *metrics.Metrics
	now      func() time.Time

	writes conc.WaitGroup
}

// NewInsightsService creates a new insights service
func NewInsightsService(
	checkIns repository.CheckInRepository,
	insights repository.InsightRepository,
	cfg InsightsConfig,
	m *metrics.Metrics,
) *InsightsService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.CacheWriteTimeout <= 0 {
		cfg.CacheWriteTimeout = 5 * time.Second
	}

	return &InsightsService{
		checkIns: checkIns,
		insights: insights,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// Wait blocks until every background insight write has finished
func (s *InsightsService) Wait() {
	s.writes.Wait()
}

// WeeklySummary reports the distribution of the last 7 days with a cached narrative
func (s *InsightsService) WeeklySummary(ctx context.Context, access models.AccessContext) (report *models.WeeklySummaryReport, err error) {
	kind := models.InsightTypeWeeklySummary
	defer func() { s.metrics.RecordReport(string(kind), outcome(err)) }()
	ctx = reportContext(ctx, string(kind), access)

	if err := RequirePremium(access, FeatureWeeklySummary); err != nil {
		return nil, err
	}

	window := models.NewPeriodWindow(s.now(), WeeklyWindowDays, s.cfg.Location)

	var (
		rows   []models.CheckIn
		cached *models.InsightRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.fetchCheckIns(gctx, access.UserID, window, false)
		return err
	})
	g.Go(func() (err error) {
		cached, err = s.currentInsight(gctx, access.UserID, kind, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	checkIns, skipped := s.validRows(ctx, string(kind), rows)
	summary := Summarize(checkIns)

	report = &models.WeeklySummaryReport{
		Period:          window,
		Statistics:      summary,
		DominantEmotion: DominantEmotion(summary.Distribution),
		SkippedRecords:  skipped,
		GeneratedAt:     s.now().UTC(),
	}
	report.Narrative, report.NarrativeCached = s.narrative(ctx, access.UserID, kind, window, cached, summary.TotalCount, func() string {
		return weeklyNarrative(summary)
	})

	return report, nil
}

// MoodTriggers reports time-of-day, day-of-week and vocabulary patterns of
// the last 30 days with a cached narrative
func (s *InsightsService) MoodTriggers(ctx context.Context, access models.AccessContext) (report *models.TriggerReport, err error) {
	kind := models.InsightTypeMoodTrigger
	defer func() { s.metrics.RecordReport(string(kind), outcome(err)) }()
	ctx = reportContext(ctx, string(kind), access)

	if err := RequirePremium(access, FeatureMoodTriggers); err != nil {
		return nil, err
	}

	window := models.NewPeriodWindow(s.now(), AnalysisWindowDays, s.cfg.Location)

	var (
		allRows        []models.CheckIn
		reflectiveRows []models.CheckIn
		cached         *models.InsightRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		allRows, err = s.fetchCheckIns(gctx, access.UserID, window, false)
		return err
	})
	g.Go(func() (err error) {
		reflectiveRows, err = s.fetchCheckIns(gctx, access.UserID, window, true)
		return err
	})
	g.Go(func() (err error) {
		cached, err = s.currentInsight(gctx, access.UserID, kind, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all, skipped := s.validRows(ctx, string(kind), allRows)
	reflective := dropInvalid(reflectiveRows)

	patterns := Mine(all, reflective, s.cfg.Location)
	dominantSlot := DominantTimeSlot(patterns.TimeOfDay)

	report = &models.TriggerReport{
		Period:           window,
		TotalCheckIns:    len(all),
		Patterns:         patterns,
		DominantTimeSlot: dominantSlot,
		SkippedRecords:   skipped,
		GeneratedAt:      s.now().UTC(),
	}
	report.Narrative, report.NarrativeCached = s.narrative(ctx, access.UserID, kind, window, cached, len(all), func() string {
		return triggerNarrative(patterns, dominantSlot, len(all))
	})

	return report, nil
}

// Recommendations applies the recommendation rules to the last 30 days and
// appends the cached personalized recommendation when there is one
func (s *InsightsService) Recommendations(ctx context.Context, access models.AccessContext) (report *models.RecommendationReport, err error) {
	defer func() { s.metrics.RecordReport(reportKindRecommendations, outcome(err)) }()
	ctx = reportContext(ctx, reportKindRecommendations, access)

	if err := RequirePremium(access, FeatureRecommendations); err != nil {
		return nil, err
	}

	window := models.NewPeriodWindow(s.now(), AnalysisWindowDays, s.cfg.Location)

	var (
		rows   []models.CheckIn
		cached *models.InsightRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.fetchCheckIns(gctx, access.UserID, window, false)
		return err
	})
	g.Go(func() (err error) {
		cached, err = s.currentInsight(gctx, access.UserID, models.InsightTypeRecommendation, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	checkIns, skipped := s.validRows(ctx, reportKindRecommendations, rows)

	recs := Recommend(EmotionCounts(checkIns), len(checkIns))
	if cached != nil {
		recs = append(recs, aiRecommendation(cached))
	}

	return &models.RecommendationReport{
		Period:          window,
		TotalCheckIns:   len(checkIns),
		Recommendations: recs,
		SkippedRecords:  skipped,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// narrative returns the cached content when there is one. Otherwise it
// generates fresh prose and stores it in the background. Empty windows are
// not stored so the first check-in of a window gets a real narrative.
func (s *InsightsService) narrative(
	ctx context.Context,
	userID string,
	kind models.InsightType,
	window models.PeriodWindow,
	cached *models.InsightRecord,
	total int,
	generate func() string,
) (string, bool) {
	s.metrics.RecordNarrativeCache(string(kind), cached != nil)
	if cached != nil {
		return cached.Content, true
	}

	content := generate()
	if total > 0 {
		s.storeAsync(ctx, userID, kind, content, window.StartDate)
	}
	return content, false
}

func (s *InsightsService) fetchCheckIns(ctx context.Context, userID string, window models.PeriodWindow, requireReflection bool) ([]models.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.checkIns.FetchCheckIns(ctx, userID, window.StartDate, window.EndDate, requireReflection)
	s.metrics.ObserveStore("fetch_check_ins", time.Since(start))
	if err != nil {
		return nil, upstream("fetch check-ins", err)
	}
	return rows, nil
}

func (s *InsightsService) currentInsight(ctx context.Context, userID string, kind models.InsightType, window models.PeriodWindow) (*models.InsightRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	record, err := s.insights.GetCurrent(ctx, userID, kind, window.StartDate)
	s.metrics.ObserveStore("get_current_insight", time.Since(start))
	if err != nil {
		return nil, upstream("get current insight", err)
	}
	return record, nil
}

// storeAsync persists a generated narrative without blocking the response.
// The write outlives the request context but is bounded by CacheWriteTimeout.
func (s *InsightsService) storeAsync(ctx context.Context, userID string, kind models.InsightType, content string, periodStart time.Time) {
	log := logger.Ctx(ctx)
	detached := context.WithoutCancel(ctx)

	s.writes.Go(func() {
		ctx, cancel := context.WithTimeout(detached, s.cfg.CacheWriteTimeout)
		defer cancel()

		if _, err := s.insights.Store(ctx, userID, kind, content, periodStart); err != nil {
			s.metrics.RecordCacheWriteFailure(string(kind))
			log.Warn("failed to cache insight narrative",
				logger.String("insight_type", string(kind)),
				logger.Err(err),
			)
		}
	})
}

// validRows drops malformed check-ins, logging and counting them
func (s *InsightsService) validRows(ctx context.Context, kind string, rows []models.CheckIn) ([]models.CheckIn, int) {
	valid := make([]models.CheckIn, 0, len(rows))
	var firstErr error
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		valid = append(valid, row)
	}

	skipped := len(rows) - len(valid)
	if skipped > 0 {
		s.metrics.RecordSkipped(kind, skipped)
		logger.Ctx(ctx).Warn("skipped malformed check-ins",
			logger.Int("skipped", skipped),
			logger.Err(firstErr),
		)
	}
	return valid, skipped
}

// reportContext tags log entries written while computing a report
func reportContext(ctx context.Context, kind string, access models.AccessContext) context.Context {
	ctx = logger.WithUserID(ctx, access.UserID)
	return logger.WithReport(ctx, kind, string(access.SubscriptionTier))
}

func dropInvalid(rows []models.CheckIn) []models.CheckIn {
	valid := make([]models.CheckIn, 0, len(rows))
	for _, row := range rows {
		if row.Validate() == nil {
			valid = append(valid, row)
		}
	}
	return valid
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrAccessDenied):
		return metrics.OutcomeDenied
	case errors.Is(err, ErrUpstreamUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
