package timeline

// Window defaults matching the usual "recent history plus near-term forecast"
// presentation.
const (
	DefaultHistoryWindow  = 15
	DefaultForecastWindow = 2
)

// SelectWindow derives the compact view from a merged, date-ascending row
// sequence: the most recent historyWindow anchor rows (rows backed by real or
// provisional weeks) plus at most forecastWindow forecast-only rows that
// immediately follow the last anchor. Out-of-range parameters fall back to the
// defaults. The result is never empty while rows is non-empty.
func SelectWindow(rows []TimelineRow, historyWindow, forecastWindow int) []TimelineRow {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	if forecastWindow < 0 {
		forecastWindow = DefaultForecastWindow
	}

	anchors := make([]TimelineRow, 0, len(rows))
	for _, row := range rows {
		if row.HasHistory || row.IsPending {
			anchors = append(anchors, row)
		}
	}
	if len(anchors) == 0 {
		// No real or provisional weeks yet: nothing to anchor a window on.
		return rows
	}

	start := len(anchors) - historyWindow
	if start < 0 {
		start = 0
	}
	windowStart := anchors[start].Date
	lastAnchor := anchors[len(anchors)-1].Date

	result := make([]TimelineRow, 0, historyWindow+forecastWindow)
	for _, row := range rows {
		if compareWeek(row.Date, windowStart) >= 0 && compareWeek(row.Date, lastAnchor) <= 0 {
			result = append(result, row)
		}
	}

	taken := 0
	for _, row := range rows {
		if taken >= forecastWindow {
			break
		}
		if compareWeek(row.Date, lastAnchor) > 0 && row.ForecastValue != nil {
			result = append(result, row)
			taken++
		}
	}

	if len(result) == 0 {
		return rows
	}
	return result
}
