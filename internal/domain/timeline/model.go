package timeline

import "github.com/qiwen/epichart/pkg/metrics"

// SourceKind labels the provenance of a weekly case value.
type SourceKind string

const (
	SourceObserved      SourceKind = "observed"
	SourceManual        SourceKind = "manual"
	SourceSynthetic     SourceKind = "synthetic"
	SourceSeasonalClone SourceKind = "seasonal_clone"
	SourcePending       SourceKind = "pending"
)

// HistoryPoint is one week's case count as reported by the forecasting
// collaborator, tagged with how the value came to exist.
type HistoryPoint struct {
	Date   string     `json:"date"`
	Value  float64    `json:"value"`
	Source SourceKind `json:"source"`
}

// PendingPoint stands in for a week whose real data has not arrived yet; the
// collaborator supplies a provisional estimate.
type PendingPoint struct {
	Date           string  `json:"date"`
	PredictedValue float64 `json:"predictedValue"`
}

// ForecastPoint is a future week's prediction, optionally annotated with the
// now-known actual once it arrives.
type ForecastPoint struct {
	Date           string   `json:"date"`
	HorizonIndex   int      `json:"horizonIndex"`
	PredictedValue float64  `json:"predictedValue"`
	ActualValue    *float64 `json:"actualValue,omitempty"`
}

// TimelineRow is the merged per-week entity handed to the chart. Each nullable
// channel marshals to null where no value exists, so a generic multi-series
// line chart can plot every channel independently.
type TimelineRow struct {
	Date           string     `json:"date"`
	ActualValue    *float64   `json:"actualValue"`
	ActualSource   SourceKind `json:"actualSource,omitempty"`
	FillValue      *float64   `json:"fillValue"`
	FillLineValue  *float64   `json:"fillLineValue"`
	FillSource     SourceKind `json:"fillSource,omitempty"`
	ForecastValue  *float64   `json:"forecastValue"`
	ConnectorValue *float64   `json:"connectorValue"`
	HasHistory     bool       `json:"hasHistory"`
	HasForecast    bool       `json:"hasForecast"`
	IsPending      bool       `json:"isPending"`
}

// PredictResult is the typed snapshot returned by the collaborator's predict
// endpoint. It is the raw input to Merge and the unit cached per region.
type PredictResult struct {
	CutDate            string          `json:"cutDate"`
	History            []HistoryPoint  `json:"history"`
	Pending            []PendingPoint  `json:"pendingWeeks"`
	Forecast           []ForecastPoint `json:"forecast"`
	DataAvailableUntil string          `json:"dataAvailableUntil"`
	GeneratedUntil     string          `json:"generatedUntil"`
	CurrentWeekStart   string          `json:"currentWeekStart"`
	ForecastStart      string          `json:"forecastStart"`

	// PayloadBytes records the wire size of the fetch that produced this
	// snapshot. Not carried through the cache.
	PayloadBytes int `json:"-"`
}

// ObservationRecord is a stored weekly case count owned by the collaborator.
type ObservationRecord struct {
	RegionID  string  `json:"regionId"`
	WeekStart string  `json:"weekStart"`
	CaseCount float64 `json:"caseCount"`
	CreatedAt string  `json:"createdAt"`
}

// ObservationEntry is a single week submitted as a manual correction.
type ObservationEntry struct {
	WeekStart string  `json:"weekStart"`
	CaseCount float64 `json:"caseCount"`
}

// View selects which slice of the merged timeline a chart request wants.
const (
	ViewCompact = "compact"
	ViewFull    = "full"
)

// ChartRequest drives one chart computation.
type ChartRequest struct {
	RegionID       string
	View           string
	HistoryWindow  int
	ForecastWindow int
	Horizon        int
	Refresh        bool

	// LatestWeekStart/LatestCases preview an unsaved correction: the pair is
	// passed through to the collaborator and the response is never cached.
	LatestWeekStart string
	LatestCases     *float64
}

// ChartResponse is the sole contract surface toward the rendering side.
type ChartResponse struct {
	RegionID           string             `json:"regionId"`
	View               string             `json:"view"`
	Rows               []TimelineRow      `json:"rows"`
	CutDate            string             `json:"cutDate,omitempty"`
	DataAvailableUntil string             `json:"dataAvailableUntil,omitempty"`
	GeneratedUntil     string             `json:"generatedUntil,omitempty"`
	CurrentWeekStart   string             `json:"currentWeekStart,omitempty"`
	ForecastStart      string             `json:"forecastStart,omitempty"`
	Fetch              metrics.FetchStats `json:"fetch"`
}

// OverviewResponse bundles the compact chart with the editable observation
// list for the region workspace screen.
type OverviewResponse struct {
	Chart        ChartResponse       `json:"chart"`
	Observations []ObservationRecord `json:"observations"`
}
