package forecastapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/qiwen/epichart/internal/domain/timeline"
)

const defaultTimeout = 10 * time.Second

// Client talks to the forecasting/storage collaborator. Responses are decoded
// and normalized here; the domain only ever sees validated, typed collections.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict requests a fresh history+forecast snapshot for a region.
func (c *Client) Predict(ctx context.Context, req timeline.PredictRequest) (timeline.PredictResult, error) {
	payload := predictRequest{
		RegionID:        req.RegionID,
		Horizon:         req.Horizon,
		LatestWeekStart: req.LatestWeekStart,
		LatestCases:     req.LatestCases,
	}
	raw, err := c.post(ctx, c.baseURL+"/predict", payload)
	if err != nil {
		return timeline.PredictResult{}, fmt.Errorf("predict: %w", err)
	}

	var wire predictResponse
	if err := sonic.Unmarshal(raw, &wire); err != nil {
		return timeline.PredictResult{}, fmt.Errorf("decode predict response: %w", err)
	}
	result := normalizePredict(wire)
	result.PayloadBytes = len(raw)
	return result, nil
}

// Observations lists the stored weekly case counts for a region.
func (c *Client) Observations(ctx context.Context, regionID string) ([]timeline.ObservationRecord, error) {
	endpoint := fmt.Sprintf("%s/regions/%s/observations", c.baseURL, url.PathEscape(regionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build observations request: %w", err)
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}

	var wire observationsResponse
	if err := sonic.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode observations response: %w", err)
	}
	return normalizeObservations(wire.Records), nil
}

// SubmitObservations sends manual weekly corrections to the collaborator.
func (c *Client) SubmitObservations(ctx context.Context, regionID string, entries []timeline.ObservationEntry) error {
	endpoint := fmt.Sprintf("%s/regions/%s/observations", c.baseURL, url.PathEscape(regionID))
	wire := submitRequest{Entries: make([]submitEntry, 0, len(entries))}
	for _, entry := range entries {
		wire.Entries = append(wire.Entries, submitEntry{WeekStart: entry.WeekStart, CaseCount: entry.CaseCount})
	}
	if _, err := c.post(ctx, endpoint, wire); err != nil {
		return fmt.Errorf("submit observations: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	if err := requireJSON(resp.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

// requireJSON enforces the collaborator contract: anything that is not
// application/json is a fetch-layer error, never a partial merge.
func requireJSON(contentType string) error {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt != "application/json" {
		return fmt.Errorf("unexpected content type %q", contentType)
	}
	return nil
}

type predictRequest struct {
	RegionID        string   `json:"regionId"`
	Horizon         int      `json:"horizon"`
	LatestWeekStart string   `json:"latestWeekStart,omitempty"`
	LatestCases     *float64 `json:"latestCases,omitempty"`
}

type predictResponse struct {
	CutDate            string          `json:"cutDate"`
	History            []historyEntry  `json:"history"`
	Forecast           []forecastEntry `json:"forecast"`
	PendingWeeks       []pendingEntry  `json:"pendingWeeks"`
	DataAvailableUntil string          `json:"dataAvailableUntil"`
	GeneratedUntil     string          `json:"generatedUntil"`
	CurrentWeekStart   string          `json:"currentWeekStart"`
	ForecastStart      string          `json:"forecastStart"`
}

type historyEntry struct {
	Date      string   `json:"date"`
	CaseCount *float64 `json:"caseCount"`
	Source    string   `json:"source,omitempty"`
}

type forecastEntry struct {
	Date           string   `json:"date"`
	HorizonIndex   int      `json:"horizonIndex"`
	PredictedValue *float64 `json:"predictedValue"`
	ActualValue    *float64 `json:"actualValue"`
}

type pendingEntry struct {
	Date           string   `json:"date"`
	PredictedValue *float64 `json:"predictedValue"`
}

type observationsResponse struct {
	Records []observationRecord `json:"records"`
}

type observationRecord struct {
	RegionID  string   `json:"regionId"`
	WeekStart string   `json:"weekStart"`
	CaseCount *float64 `json:"caseCount"`
	CreatedAt string   `json:"createdAt"`
}

type submitRequest struct {
	Entries []submitEntry `json:"entries"`
}

type submitEntry struct {
	WeekStart string  `json:"weekStart"`
	CaseCount float64 `json:"caseCount"`
}

// normalizePredict maps wire entries to domain points. Entries without a
// usable finite value are excluded here so NaN never reaches a chart channel.
func normalizePredict(wire predictResponse) timeline.PredictResult {
	result := timeline.PredictResult{
		CutDate:            wire.CutDate,
		DataAvailableUntil: wire.DataAvailableUntil,
		GeneratedUntil:     wire.GeneratedUntil,
		CurrentWeekStart:   wire.CurrentWeekStart,
		ForecastStart:      wire.ForecastStart,
		History:            make([]timeline.HistoryPoint, 0, len(wire.History)),
		Pending:            make([]timeline.PendingPoint, 0, len(wire.PendingWeeks)),
		Forecast:           make([]timeline.ForecastPoint, 0, len(wire.Forecast)),
	}

	for _, entry := range wire.History {
		if entry.Date == "" || !finite(entry.CaseCount) {
			continue
		}
		result.History = append(result.History, timeline.HistoryPoint{
			Date:   entry.Date,
			Value:  *entry.CaseCount,
			Source: normalizeSource(entry.Source),
		})
	}
	for _, entry := range wire.PendingWeeks {
		if entry.Date == "" || !finite(entry.PredictedValue) {
			continue
		}
		result.Pending = append(result.Pending, timeline.PendingPoint{
			Date:           entry.Date,
			PredictedValue: *entry.PredictedValue,
		})
	}
	for _, entry := range wire.Forecast {
		if entry.Date == "" || !finite(entry.PredictedValue) {
			continue
		}
		point := timeline.ForecastPoint{
			Date:           entry.Date,
			HorizonIndex:   entry.HorizonIndex,
			PredictedValue: *entry.PredictedValue,
		}
		if finite(entry.ActualValue) {
			actual := *entry.ActualValue
			point.ActualValue = &actual
		}
		result.Forecast = append(result.Forecast, point)
	}
	return result
}

func normalizeObservations(records []observationRecord) []timeline.ObservationRecord {
	out := make([]timeline.ObservationRecord, 0, len(records))
	for _, rec := range records {
		if rec.WeekStart == "" || !finite(rec.CaseCount) {
			continue
		}
		out = append(out, timeline.ObservationRecord{
			RegionID:  rec.RegionID,
			WeekStart: rec.WeekStart,
			CaseCount: *rec.CaseCount,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out
}

// normalizeSource defaults absent or unrecognized provenance to observed, per
// the collaborator contract.
func normalizeSource(source string) timeline.SourceKind {
	switch timeline.SourceKind(source) {
	case timeline.SourceManual:
		return timeline.SourceManual
	case timeline.SourceSynthetic:
		return timeline.SourceSynthetic
	case timeline.SourceSeasonalClone:
		return timeline.SourceSeasonalClone
	default:
		return timeline.SourceObserved
	}
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

var _ timeline.ForecastClient = (*Client)(nil)
