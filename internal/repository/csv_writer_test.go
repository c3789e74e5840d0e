package repository

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"DarkScan/internal/domain/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteTradesRoundTrip(t *testing.T) {
	w := NewCSVResultWriter(t.TempDir())
	cfg := models.Configuration{
		Family:                     models.FamilyOffExchange,
		AnalysisDays:               3,
		HoldingDays:                5,
		OffExchangeThresholdPct:    35,
		PriceStabilityThresholdPct: 1,
	}
	trades := []*models.Trade{{
		Symbol:     "AAA",
		Config:     cfg,
		Signal:     models.SignalAccumulationStrong,
		EntryDate:  time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		EntryPrice: 10.5,
		ExitDate:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		ExitPrice:  11.0,
		ReturnPct:  4.7619,
	}}

	path, err := w.WriteTrades("run_test", trades)
	if err != nil {
		t.Fatalf("write trades: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1 trade", len(rows))
	}
	row := rows[1]
	if row[0] != "AAA" || row[5] != "ACCUMULATION_STRONG" || row[6] != "2024-01-03" {
		t.Fatalf("trade row mismatch: %v", row)
	}
}

func TestWriteResultsRanked(t *testing.T) {
	w := NewCSVResultWriter(t.TempDir())
	results := []*models.ConfigResult{
		{Config: models.Configuration{Family: models.FamilyOffExchange, AnalysisDays: 3, HoldingDays: 5}, TradeCount: 40, SymbolCount: 8, HitRatePct: 62.5},
		{Config: models.Configuration{Family: models.FamilyOffExchange, AnalysisDays: 4, HoldingDays: 5}, TradeCount: 3, SymbolCount: 1, HitRatePct: 100, LowSample: true},
	}

	path, err := w.WriteResults("run_test", results)
	if err != nil {
		t.Fatalf("write results: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 results", len(rows))
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Fatalf("rank column wrong: %v / %v", rows[1], rows[2])
	}
	if rows[2][9] != "true" {
		t.Fatalf("low-sample flag missing: %v", rows[2])
	}
}
