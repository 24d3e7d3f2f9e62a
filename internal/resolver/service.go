// internal/resolver/service.go
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cerrors "geoquery-resolver/internal/common/errors"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/common/metrics"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver/collection"
	"geoquery-resolver/internal/resolver/completeness"
	"geoquery-resolver/internal/resolver/location"
	"geoquery-resolver/internal/resolver/temporal"
)

// Request is one query to resolve: the raw text plus the extractor's
// structured entities. Comparison forces comparison mode; when false the
// service still switches modes on the extracted intent or a comparative
// connective in the text.
type Request struct {
	QueryText  string
	Entities   models.ExtractedEntities
	Comparison bool
}

// Service wires the pipeline stages in their fixed order: collection
// mapping first (pure table lookup, cheapest), then location, then
// temporal or comparison, then the completeness score over everything
// resolved so far.
type Service struct {
	mapper     *collection.Mapper
	location   *location.Resolver
	temporal   *temporal.Resolver
	comparison *temporal.ComparisonResolver
	checker    *completeness.Checker
	logger     logger.Logger
}

func NewService(
	mapper *collection.Mapper,
	loc *location.Resolver,
	temp *temporal.Resolver,
	comp *temporal.ComparisonResolver,
	checker *completeness.Checker,
	log logger.Logger,
) *Service {
	return &Service{
		mapper:     mapper,
		location:   loc,
		temporal:   temp,
		comparison: comp,
		checker:    checker,
		logger:     log.WithFields(map[string]interface{}{"component": "resolver-service"}),
	}
}

// Resolve runs the full pipeline. An unresolvable location is not an
// error here: it rides into the completeness checker as "no bbox" so the
// user gets a single consolidated clarification list. Comparison-mode
// parse failures DO surface as errors, because a comparison without both
// windows has no usable degraded form.
func (s *Service) Resolve(ctx context.Context, req Request) (*models.ResolvedQuery, error) {
	start := time.Now()
	queryID := uuid.New().String()

	log := s.logger.WithFields(map[string]interface{}{"queryId": queryID})
	log.Info("resolving query", map[string]interface{}{
		"query": req.QueryText,
	})

	datasets := s.mapper.Map(req.QueryText)

	loc := s.resolveLocation(ctx, log, req.Entities.Location)

	result := &models.ResolvedQuery{
		QueryID:  queryID,
		Datasets: datasets,
	}
	if loc != nil {
		bbox := loc.BBox
		result.BBox = &bbox
		result.Location = loc
	}

	mode := "single"
	var report models.CompletenessReport

	if s.isComparison(req) {
		mode = "comparison"

		pair, err := s.comparison.Resolve(req.QueryText)
		if err != nil {
			metrics.QueriesResolved.WithLabelValues("comparison_failed").Inc()
			metrics.ResolutionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
			return nil, err
		}
		result.Comparison = pair

		// Each window is scored independently, then merged: worst
		// severity wins, questions re-capped.
		var beforeReport, afterReport models.CompletenessReport
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			beforeReport = s.checker.Check(s.checkerInput(req, loc, datasets, pair.Before))
			return nil
		})
		g.Go(func() error {
			afterReport = s.checker.Check(s.checkerInput(req, loc, datasets, pair.After))
			return nil
		})
		_ = g.Wait()
		report = completeness.Merge(beforeReport, afterReport)
	} else {
		filter, temporalIssues := s.temporal.Resolve(req.Entities.Temporal, datasets)
		result.Temporal = filter

		report = s.checker.Check(s.checkerInput(req, loc, datasets, filter))
		report.Issues = mergeIssues(report.Issues, temporalIssues)
	}

	result.Completeness = report

	outcome := "resolved"
	if report.NeedsClarification {
		outcome = "needs_clarification"
	}
	metrics.QueriesResolved.WithLabelValues(outcome).Inc()
	metrics.ResolutionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.CompletenessSeverity.Observe(float64(report.Severity))

	log.Info("query resolved", map[string]interface{}{
		"datasets":           result.Datasets,
		"mode":               mode,
		"severity":           report.Severity,
		"needsClarification": report.NeedsClarification,
	})

	return result, nil
}

// resolveLocation runs the cascade when the extractor named a place. A
// total miss degrades to nil rather than failing the query.
func (s *Service) resolveLocation(ctx context.Context, log logger.Logger, entity models.LocationEntity) *models.ResolvedLocation {
	if strings.TrimSpace(entity.Name) == "" {
		return nil
	}

	loc, err := s.location.Resolve(ctx, entity.Name, entity.Type)
	if err != nil {
		if !errors.Is(err, cerrors.ErrNotFound) {
			log.WithError(err).Error("location resolution failed", map[string]interface{}{
				"location": entity.Name,
			})
		}
		return nil
	}
	return loc
}

func (s *Service) isComparison(req Request) bool {
	if req.Comparison {
		return true
	}
	if strings.EqualFold(req.Entities.Intent.Type, "comparison") {
		return true
	}
	return temporal.HasComparisonCue(req.QueryText)
}

func (s *Service) checkerInput(req Request, loc *models.ResolvedLocation, datasets []string, filter models.TemporalFilter) completeness.Input {
	return completeness.Input{
		Entities:  req.Entities,
		QueryText: req.QueryText,
		Location:  loc,
		Datasets:  datasets,
		Temporal:  filter,
	}
}

func mergeIssues(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, it := range base {
		seen[it] = true
	}
	for _, it := range extra {
		if seen[it] {
			continue
		}
		seen[it] = true
		base = append(base, it)
	}
	return base
}
