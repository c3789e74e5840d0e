package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSortsAndParsesOptionalColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc_daily.csv",
		"Date,Close,Volume,off_exchange_volume,short_volume\n"+
			"2024-01-03,11.5,2000,900,300\n"+
			"2024-01-01,10.0,1000,400,100\n"+
			"2024-01-02,10.5,1500,600,200\n")

	src := NewCSVBarSource(dir, nil)
	s, err := src.Load(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Symbol != "ABC" || s.Len() != 3 {
		t.Fatalf("got %s with %d bars", s.Symbol, s.Len())
	}
	if !s.Bars[0].Date.Before(s.Bars[1].Date) || !s.Bars[1].Date.Before(s.Bars[2].Date) {
		t.Fatal("bars not sorted by date")
	}
	if s.Bars[0].Close != 10.0 || s.Bars[0].OffExchangeVolume != 400 || s.Bars[0].ShortVolume != 100 {
		t.Fatalf("first bar parsed wrong: %+v", s.Bars[0])
	}
}

func TestLoadWithoutOptionalColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "xyz.csv",
		"Date,Close,Volume\n2024-01-01,5.0,100\n2024-01-02,5.1,110\n")

	src := NewCSVBarSource(dir, nil)
	s, err := src.Load(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Bars[0].OffExchangeVolume != 0 || s.Bars[0].ShortVolume != 0 {
		t.Fatalf("absent columns must default to zero: %+v", s.Bars[0])
	}
}

func TestLoadAllDropsMalformedAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.csv",
		"Date,Close,Volume\n2024-01-01,5.0,100\n2024-01-02,5.1,110\n")
	writeFile(t, dir, "dupe.csv",
		"Date,Close,Volume\n2024-01-01,5.0,100\n2024-01-01,5.1,110\n")
	writeFile(t, dir, "badhdr.csv",
		"ts,price\n2024-01-01,5.0\n")

	src := NewCSVBarSource(dir, nil)
	series, dropped, err := src.LoadAll(context.Background(), []string{"GOOD", "DUPE", "BADHDR", "MISSING"})
	if err != nil {
		t.Fatalf("loadall: %v", err)
	}
	if len(series) != 1 || series[0].Symbol != "GOOD" {
		t.Fatalf("expected only GOOD to survive, got %d series", len(series))
	}
	if len(dropped) != 3 {
		t.Fatalf("expected 3 drops, got %+v", dropped)
	}
	for _, d := range dropped {
		if d.Reason == "" {
			t.Fatalf("drop without a reason: %+v", d)
		}
	}
}

func TestSymbolsListsUpperCasedTickers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "aapl_2024.csv", "Date,Close,Volume\n2024-01-01,5,1\n")
	writeFile(t, dir, "msft.csv", "Date,Close,Volume\n2024-01-01,5,1\n")
	writeFile(t, dir, "notes.txt", "ignore me")

	src := NewCSVBarSource(dir, nil)
	syms, err := src.Symbols(context.Background())
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	if len(syms) != 2 || syms[0] != "AAPL" || syms[1] != "MSFT" {
		t.Fatalf("got %v, want [AAPL MSFT]", syms)
	}
}
