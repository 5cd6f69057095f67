package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tradeframe-go/internal/market"
)

// LoadCSV reads OHLCV bars from a CSV file with a
// timestamp,open,high,low,close,volume header. Timestamps parse as RFC3339 or
// plain dates. Rows must already be in chronological order.
func LoadCSV(path string) ([]market.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv %s has no data rows", path)
	}

	header := records[0]
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"timestamp", "open", "high", "low", "close", "volume"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", col)
		}
	}

	bars := make([]market.Bar, 0, len(records)-1)
	for n, row := range records[1:] {
		ts, err := parseTimestamp(row[idx["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		bar := market.Bar{Timestamp: ts}
		for col, dst := range map[string]*float64{
			"open":   &bar.Open,
			"high":   &bar.High,
			"low":    &bar.Low,
			"close":  &bar.Close,
			"volume": &bar.Volume,
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[col]]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n+2, col, err)
			}
			*dst = v
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
