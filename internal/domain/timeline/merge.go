package timeline

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/qiwen/epichart/pkg/util"
)

// Merge folds the three sparse per-week collections into one ordered, gap-free
// row sequence. Rows are keyed by calendar date; each source writes only the
// fields it owns, in history -> pending -> forecast order, so conflicting
// writes for a single date resolve deterministically regardless of the input
// slices' internal ordering.
func Merge(history []HistoryPoint, pending []PendingPoint, forecast []ForecastPoint) []TimelineRow {
	byDate := make(map[string]*TimelineRow, len(history)+len(pending)+len(forecast))
	rowFor := func(date string) *TimelineRow {
		if row, ok := byDate[date]; ok {
			return row
		}
		row := &TimelineRow{Date: date}
		byDate[date] = row
		return row
	}

	for _, pt := range history {
		row := rowFor(pt.Date)
		row.HasHistory = true
		switch pt.Source {
		case SourceObserved, SourceManual:
			row.ActualValue = ptr(pt.Value)
			row.ActualSource = pt.Source
		default:
			// Synthetic interpolation or prior-season clone: both the marker
			// channel and the dashed-line channel carry the value.
			row.FillValue = ptr(pt.Value)
			row.FillLineValue = ptr(pt.Value)
			row.FillSource = pt.Source
		}
	}

	for _, pt := range pending {
		row := rowFor(pt.Date)
		row.FillValue = ptr(pt.PredictedValue)
		row.FillLineValue = ptr(pt.PredictedValue)
		row.FillSource = SourcePending
		row.IsPending = true
	}

	for _, pt := range forecast {
		row := rowFor(pt.Date)
		row.HasForecast = true
		row.ForecastValue = ptr(pt.PredictedValue)
		// A forecast-attached actual backfills the actual channel only when
		// no observed or manual history already claimed it.
		if row.ActualValue == nil && pt.ActualValue != nil && isFinite(*pt.ActualValue) {
			row.ActualValue = ptr(*pt.ActualValue)
			row.ActualSource = SourceObserved
		}
	}

	rows := make([]*TimelineRow, 0, len(byDate))
	for _, row := range byDate {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return compareWeek(rows[i].Date, rows[j].Date) < 0
	})

	applyManualConnectors(rows)

	out := make([]TimelineRow, len(rows))
	for i, row := range rows {
		out[i] = *row
	}
	return out
}

// applyManualConnectors runs the single left-to-right pass that stitches a
// manual correction to its immediate neighbors. A manual row claims its own
// connector and drops its dashed-line segment; each direct neighbor, unless
// already claimed by an earlier manual row, receives its best available value
// as connector. Only the successor additionally loses its dashed segment,
// keeping continuity into the correction visible on the predecessor side.
func applyManualConnectors(rows []*TimelineRow) {
	for i, row := range rows {
		if row.ActualSource != SourceManual || row.ActualValue == nil {
			continue
		}
		row.ConnectorValue = ptr(*row.ActualValue)
		row.FillLineValue = nil
		if i > 0 {
			claimConnector(rows[i-1], false)
		}
		if i+1 < len(rows) {
			claimConnector(rows[i+1], true)
		}
	}
}

func claimConnector(row *TimelineRow, successor bool) {
	if row.ConnectorValue != nil {
		return
	}
	if best := bestRowValue(row); best != nil {
		row.ConnectorValue = ptr(*best)
	}
	if successor && row.FillLineValue != nil {
		row.FillLineValue = nil
	}
}

func bestRowValue(row *TimelineRow) *float64 {
	switch {
	case row.ActualValue != nil:
		return row.ActualValue
	case row.FillValue != nil:
		return row.FillValue
	case row.ForecastValue != nil:
		return row.ForecastValue
	default:
		return nil
	}
}

// compareWeek orders calendar week keys as dates, not bytes. Keys that fail to
// parse fall back to a lexical tie-break so the sort stays total.
func compareWeek(a, b string) int {
	ta, errA := util.ParseWeekDate(a)
	tb, errB := util.ParseWeekDate(b)
	if errA == nil && errB == nil {
		return compareTimes(ta, tb)
	}
	return strings.Compare(a, b)
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func ptr(v float64) *float64 {
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
