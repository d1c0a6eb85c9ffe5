package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeOneRowPerDateSortedAscending(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-02-05", Value: 7, Source: SourceObserved},
		{Date: "2024-01-22", Value: 4, Source: SourceSynthetic},
		{Date: "2024-01-29", Value: 5, Source: SourceObserved},
	}
	pending := []PendingPoint{
		{Date: "2024-02-12", PredictedValue: 6},
	}
	forecast := []ForecastPoint{
		{Date: "2024-02-26", HorizonIndex: 2, PredictedValue: 9},
		{Date: "2024-02-19", HorizonIndex: 1, PredictedValue: 8},
	}

	rows := Merge(history, pending, forecast)

	require.Len(t, rows, 6)
	dates := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	for _, row := range rows {
		require.False(t, seen[row.Date], "duplicate row for %s", row.Date)
		seen[row.Date] = true
		dates = append(dates, row.Date)
	}
	require.Equal(t, []string{"2024-01-22", "2024-01-29", "2024-02-05", "2024-02-12", "2024-02-19", "2024-02-26"}, dates)
}

func TestMergeOrderIndependentInputs(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 3, Source: SourceObserved},
		{Date: "2024-01-08", Value: 6, Source: SourceManual},
		{Date: "2024-01-15", Value: 4, Source: SourceObserved},
		{Date: "2024-01-22", Value: 5, Source: SourceSynthetic},
	}
	forecast := []ForecastPoint{
		{Date: "2024-01-29", HorizonIndex: 1, PredictedValue: 7},
		{Date: "2024-02-05", HorizonIndex: 2, PredictedValue: 8},
	}

	expected := Merge(history, nil, forecast)

	reversedHistory := make([]HistoryPoint, len(history))
	for i, pt := range history {
		reversedHistory[len(history)-1-i] = pt
	}
	reversedForecast := make([]ForecastPoint, len(forecast))
	for i, pt := range forecast {
		reversedForecast[len(forecast)-1-i] = pt
	}

	require.Equal(t, expected, Merge(reversedHistory, nil, reversedForecast))
}

func TestMergeObservedWinsOverForecastActual(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-08", Value: 5, Source: SourceObserved},
	}
	forecast := []ForecastPoint{
		{Date: "2024-01-08", HorizonIndex: 1, PredictedValue: 9, ActualValue: ptr(12)},
	}

	rows := Merge(history, nil, forecast)

	require.Len(t, rows, 1)
	row := rows[0]
	require.NotNil(t, row.ActualValue)
	require.Equal(t, 5.0, *row.ActualValue)
	require.Equal(t, SourceObserved, row.ActualSource)
	require.True(t, row.HasForecast)
	require.NotNil(t, row.ForecastValue)
	require.Equal(t, 9.0, *row.ForecastValue)
}

func TestMergeForecastActualBackfillsUnclaimedRow(t *testing.T) {
	forecast := []ForecastPoint{
		{Date: "2024-01-08", HorizonIndex: 1, PredictedValue: 9, ActualValue: ptr(12)},
	}

	rows := Merge(nil, nil, forecast)

	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ActualValue)
	require.Equal(t, 12.0, *rows[0].ActualValue)
	require.Equal(t, SourceObserved, rows[0].ActualSource)
	require.False(t, rows[0].HasHistory)
}

func TestMergeSyntheticAndPendingFillChannels(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 4, Source: SourceSeasonalClone},
	}
	pending := []PendingPoint{
		{Date: "2024-01-08", PredictedValue: 6},
	}

	rows := Merge(history, pending, nil)

	require.Len(t, rows, 2)

	clone := rows[0]
	require.True(t, clone.HasHistory)
	require.Nil(t, clone.ActualValue)
	require.Equal(t, 4.0, *clone.FillValue)
	require.Equal(t, 4.0, *clone.FillLineValue)
	require.Equal(t, SourceSeasonalClone, clone.FillSource)
	require.False(t, clone.IsPending)

	pendingRow := rows[1]
	require.False(t, pendingRow.HasHistory)
	require.True(t, pendingRow.IsPending)
	require.Equal(t, 6.0, *pendingRow.FillValue)
	require.Equal(t, 6.0, *pendingRow.FillLineValue)
	require.Equal(t, SourcePending, pendingRow.FillSource)
}

func TestMergeForecastOnlyRow(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 3, Source: SourceObserved},
		{Date: "2024-01-08", Value: 5, Source: SourceObserved},
	}
	forecast := []ForecastPoint{
		{Date: "2024-01-15", HorizonIndex: 1, PredictedValue: 9},
	}

	rows := Merge(history, nil, forecast)

	require.Len(t, rows, 3)
	last := rows[2]
	require.Equal(t, "2024-01-15", last.Date)
	require.True(t, last.HasForecast)
	require.Equal(t, 9.0, *last.ForecastValue)
	require.Nil(t, last.ActualValue)
	require.False(t, last.HasHistory)
}

func TestManualConnectorBridgesObservedNeighbors(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 3, Source: SourceObserved},
		{Date: "2024-01-08", Value: 6, Source: SourceManual},
		{Date: "2024-01-15", Value: 4, Source: SourceObserved},
	}

	rows := Merge(history, nil, nil)

	require.Len(t, rows, 3)

	manual := rows[1]
	require.Equal(t, 6.0, *manual.ConnectorValue)
	require.Nil(t, manual.FillLineValue)
	require.Equal(t, SourceManual, manual.ActualSource)

	require.Equal(t, 3.0, *rows[0].ConnectorValue)
	require.Equal(t, 4.0, *rows[2].ConnectorValue)
}

func TestManualConnectorNeighborValuePriority(t *testing.T) {
	// Predecessor only has a fill value, successor only has a forecast value.
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 2, Source: SourceSynthetic},
		{Date: "2024-01-08", Value: 6, Source: SourceManual},
	}
	forecast := []ForecastPoint{
		{Date: "2024-01-15", HorizonIndex: 1, PredictedValue: 8},
	}

	rows := Merge(history, nil, forecast)

	require.Len(t, rows, 3)
	require.Equal(t, 2.0, *rows[0].ConnectorValue)
	require.Equal(t, 8.0, *rows[2].ConnectorValue)
}

func TestManualConnectorSuppressesOnlySuccessorFillLine(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 2, Source: SourceSynthetic},
		{Date: "2024-01-08", Value: 6, Source: SourceManual},
		{Date: "2024-01-15", Value: 3, Source: SourceSynthetic},
	}

	rows := Merge(history, nil, nil)

	require.Len(t, rows, 3)

	// Dashed continuity into the correction stays; the step after it is
	// suppressed so the solid connector is the only line there.
	require.NotNil(t, rows[0].FillLineValue)
	require.Equal(t, 2.0, *rows[0].FillLineValue)
	require.Nil(t, rows[2].FillLineValue)
	require.NotNil(t, rows[2].FillValue, "the filled marker itself is untouched")
}

func TestAdjacentManualRowsDoNotReclaimNeighbors(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-01", Value: 3, Source: SourceObserved},
		{Date: "2024-01-08", Value: 6, Source: SourceManual},
		{Date: "2024-01-15", Value: 7, Source: SourceManual},
		{Date: "2024-01-22", Value: 4, Source: SourceObserved},
	}

	rows := Merge(history, nil, nil)

	require.Len(t, rows, 4)
	require.Equal(t, 3.0, *rows[0].ConnectorValue)
	// Each manual row keeps its own value as connector; the earlier manual
	// row's claim on 01-15 is its own actual value either way.
	require.Equal(t, 6.0, *rows[1].ConnectorValue)
	require.Equal(t, 7.0, *rows[2].ConnectorValue)
	require.Equal(t, 4.0, *rows[3].ConnectorValue)
	require.Nil(t, rows[1].FillLineValue)
	require.Nil(t, rows[2].FillLineValue)
}

func TestManualConnectorNeighborWithoutValuesSkipped(t *testing.T) {
	history := []HistoryPoint{
		{Date: "2024-01-08", Value: 6, Source: SourceManual},
	}

	rows := Merge(history, nil, nil)

	require.Len(t, rows, 1)
	require.Equal(t, 6.0, *rows[0].ConnectorValue)
}

func TestMergePendingAfterHistoryWinsForDate(t *testing.T) {
	// Merge order is history then pending, so a pending write for the same
	// date replaces the history fill channel.
	history := []HistoryPoint{
		{Date: "2024-01-08", Value: 4, Source: SourceSynthetic},
	}
	pending := []PendingPoint{
		{Date: "2024-01-08", PredictedValue: 5},
	}

	rows := Merge(history, pending, nil)

	require.Len(t, rows, 1)
	require.Equal(t, 5.0, *rows[0].FillValue)
	require.Equal(t, SourcePending, rows[0].FillSource)
	require.True(t, rows[0].IsPending)
	require.True(t, rows[0].HasHistory)
}

func TestMergeEmptyInputs(t *testing.T) {
	require.Empty(t, Merge(nil, nil, nil))
}
