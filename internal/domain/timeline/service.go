package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/qiwen/epichart/pkg/errors"
	"github.com/qiwen/epichart/pkg/metrics"
	"github.com/qiwen/epichart/pkg/util"
)

// Service exposes the per-region chart computations.
type Service interface {
	Chart(ctx context.Context, req ChartRequest) (ChartResponse, error)
	Overview(ctx context.Context, regionID string) (OverviewResponse, error)
	Observations(ctx context.Context, regionID string) ([]ObservationRecord, error)
	SubmitObservations(ctx context.Context, regionID string, entries []ObservationEntry) error
}

// PredictRequest is the domain-side shape of a predict call.
type PredictRequest struct {
	RegionID        string
	Horizon         int
	LatestWeekStart string
	LatestCases     *float64
}

// ForecastClient is the remote forecasting/storage collaborator.
type ForecastClient interface {
	Predict(ctx context.Context, req PredictRequest) (PredictResult, error)
	Observations(ctx context.Context, regionID string) ([]ObservationRecord, error)
	SubmitObservations(ctx context.Context, regionID string, entries []ObservationEntry) error
}

// Store caches the last fetched snapshot per region until the next fetch.
type Store interface {
	GetSnapshot(ctx context.Context, regionID string) (PredictResult, bool, error)
	SaveSnapshot(ctx context.Context, regionID string, snap PredictResult, ttl time.Duration) error
	InvalidateSnapshot(ctx context.Context, regionID string) error
}

// Config carries the chart domain defaults.
type Config struct {
	HistoryWindow  int
	ForecastWindow int
	Horizon        int
	SnapshotTTL    time.Duration
}

type service struct {
	cfg    Config
	client ForecastClient
	store  Store
	logger *slog.Logger
}

// NewService wires up the chart domain.
func NewService(cfg Config, client ForecastClient, store Store, logger *slog.Logger) Service {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if cfg.ForecastWindow < 0 {
		cfg.ForecastWindow = DefaultForecastWindow
	}
	return &service{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: logger.With("component", "timeline.service"),
	}
}

func (s *service) Chart(ctx context.Context, req ChartRequest) (ChartResponse, error) {
	req, err := s.resolveChartRequest(req)
	if err != nil {
		return ChartResponse{}, err
	}

	snap, stats, err := s.loadSnapshot(ctx, req)
	if err != nil {
		return ChartResponse{}, err
	}

	rows := Merge(snap.History, snap.Pending, snap.Forecast)
	if req.View == ViewCompact {
		rows = SelectWindow(rows, req.HistoryWindow, req.ForecastWindow)
	}
	s.logger.Info("chart computed", "region", req.RegionID, "view", req.View, "rows", len(rows), "cacheHit", stats.CacheHit)

	return ChartResponse{
		RegionID:           req.RegionID,
		View:               req.View,
		Rows:               rows,
		CutDate:            snap.CutDate,
		DataAvailableUntil: snap.DataAvailableUntil,
		GeneratedUntil:     snap.GeneratedUntil,
		CurrentWeekStart:   snap.CurrentWeekStart,
		ForecastStart:      snap.ForecastStart,
		Fetch:              stats,
	}, nil
}

// Overview fetches the compact chart and the stored observation list in one
// round. The two collaborator targets are independent, so the calls run
// concurrently.
func (s *service) Overview(ctx context.Context, regionID string) (OverviewResponse, error) {
	if strings.TrimSpace(regionID) == "" {
		return OverviewResponse{}, apperrors.Wrap("invalid_input", "regionId cannot be empty", nil)
	}

	var (
		chart ChartResponse
		obs   []ObservationRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chart, err = s.Chart(gctx, ChartRequest{RegionID: regionID})
		return err
	})
	g.Go(func() error {
		var err error
		obs, err = s.Observations(gctx, regionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return OverviewResponse{}, err
	}
	return OverviewResponse{Chart: chart, Observations: obs}, nil
}

func (s *service) Observations(ctx context.Context, regionID string) ([]ObservationRecord, error) {
	if strings.TrimSpace(regionID) == "" {
		return nil, apperrors.Wrap("invalid_input", "regionId cannot be empty", nil)
	}
	records, err := s.client.Observations(ctx, regionID)
	if err != nil {
		return nil, apperrors.Wrap("upstream_error", "failed to list observations", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return compareWeek(records[i].WeekStart, records[j].WeekStart) < 0
	})
	return records, nil
}

func (s *service) SubmitObservations(ctx context.Context, regionID string, entries []ObservationEntry) error {
	if strings.TrimSpace(regionID) == "" {
		return apperrors.Wrap("invalid_input", "regionId cannot be empty", nil)
	}
	if len(entries) == 0 {
		return apperrors.Wrap("invalid_input", "entries cannot be empty", nil)
	}
	for _, entry := range entries {
		if _, err := util.ParseWeekDate(entry.WeekStart); err != nil {
			return apperrors.Wrap("invalid_input", fmt.Sprintf("weekStart %q must be formatted as YYYY-MM-DD", entry.WeekStart), err)
		}
		if math.IsNaN(entry.CaseCount) || math.IsInf(entry.CaseCount, 0) || entry.CaseCount < 0 {
			return apperrors.Wrap("invalid_input", fmt.Sprintf("caseCount for %s must be a finite non-negative number", entry.WeekStart), nil)
		}
	}

	if err := s.client.SubmitObservations(ctx, regionID, entries); err != nil {
		return apperrors.Wrap("upstream_error", "failed to submit observations", err)
	}

	// The stored series changed; the next chart must refetch.
	if err := s.store.InvalidateSnapshot(ctx, regionID); err != nil {
		s.logger.Warn("snapshot invalidation failed", "region", regionID, "error", err)
	}
	s.logger.Info("observations submitted", "region", regionID, "entries", len(entries))
	return nil
}

func (s *service) resolveChartRequest(req ChartRequest) (ChartRequest, error) {
	if strings.TrimSpace(req.RegionID) == "" {
		return req, apperrors.Wrap("invalid_input", "regionId cannot be empty", nil)
	}
	switch req.View {
	case "":
		req.View = ViewCompact
	case ViewCompact, ViewFull:
	default:
		return req, apperrors.Wrap("invalid_input", fmt.Sprintf("view %q must be %q or %q", req.View, ViewCompact, ViewFull), nil)
	}
	if req.HistoryWindow < 0 || req.ForecastWindow < 0 {
		return req, apperrors.Wrap("invalid_input", "window sizes cannot be negative", nil)
	}
	if req.HistoryWindow == 0 {
		req.HistoryWindow = s.cfg.HistoryWindow
	}
	if req.ForecastWindow == 0 {
		req.ForecastWindow = s.cfg.ForecastWindow
	}
	if req.Horizon <= 0 {
		req.Horizon = s.cfg.Horizon
	}
	if req.LatestWeekStart != "" {
		if _, err := util.ParseWeekDate(req.LatestWeekStart); err != nil {
			return req, apperrors.Wrap("invalid_input", "latestWeekStart must be formatted as YYYY-MM-DD", err)
		}
	}
	return req, nil
}

// loadSnapshot returns the cached raw inputs for the region, or performs one
// fetch attempt against the collaborator. Correction previews bypass the cache
// in both directions.
func (s *service) loadSnapshot(ctx context.Context, req ChartRequest) (PredictResult, metrics.FetchStats, error) {
	preview := req.LatestCases != nil
	if !req.Refresh && !preview {
		snap, ok, err := s.store.GetSnapshot(ctx, req.RegionID)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", "region", req.RegionID, "error", err)
		} else if ok {
			return snap, metrics.FetchStats{CacheHit: true}, nil
		}
	}

	start := time.Now()
	snap, err := s.client.Predict(ctx, PredictRequest{
		RegionID:        req.RegionID,
		Horizon:         req.Horizon,
		LatestWeekStart: req.LatestWeekStart,
		LatestCases:     req.LatestCases,
	})
	stats := metrics.FetchStats{LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		return PredictResult{}, stats, apperrors.Wrap("upstream_error", "forecast request failed", err)
	}
	stats.PayloadBytes = snap.PayloadBytes

	if !preview {
		if err := s.store.SaveSnapshot(ctx, req.RegionID, snap, s.cfg.SnapshotTTL); err != nil {
			s.logger.Warn("snapshot cache write failed", "region", req.RegionID, "error", err)
		}
	}
	return snap, stats, nil
}
