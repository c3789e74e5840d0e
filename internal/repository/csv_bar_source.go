package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"DarkScan/internal/domain/models"
	applogger "DarkScan/pkg/logger"
	"DarkScan/pkg/util"
)

// CSVBarSource loads one series per CSV file from a directory. The file name
// (minus extension, up to the first underscore) is the symbol. Required
// columns: date, close, volume; off-exchange and short volume are optional
// and default to zero.
type CSVBarSource struct {
	dir string
	l   *applogger.Logger
}

func NewCSVBarSource(dir string, l *applogger.Logger) *CSVBarSource {
	return &CSVBarSource{dir: dir, l: l}
}

func (s *CSVBarSource) Symbols(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		out = append(out, symbolFromFilename(e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (s *CSVBarSource) Load(ctx context.Context, symbol string) (*models.Series, error) {
	path, err := s.pathFor(symbol)
	if err != nil {
		return nil, err
	}
	return loadSeriesCSV(path, symbol)
}

// LoadAll loads and validates every requested symbol. Malformed symbols are
// dropped with a reason; only an unreadable data directory is an error.
func (s *CSVBarSource) LoadAll(ctx context.Context, symbols []string) ([]*models.Series, []models.DroppedSymbol, error) {
	var (
		out     []*models.Series
		dropped []models.DroppedSymbol
	)
	for _, sym := range symbols {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		sr, err := s.Load(ctx, sym)
		if err != nil {
			dropped = append(dropped, models.DroppedSymbol{Symbol: sym, Reason: err.Error()})
			if s.l != nil {
				s.l.Warn("symbol dropped", applogger.String("symbol", sym), applogger.Error(err))
			}
			continue
		}
		out = append(out, sr)
	}
	return out, dropped, nil
}

func (s *CSVBarSource) pathFor(symbol string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read data dir %s: %w", s.dir, err)
	}
	want := strings.ToUpper(symbol)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		if symbolFromFilename(e.Name()) == want {
			return filepath.Join(s.dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no data file for %s", symbol)
}

func symbolFromFilename(name string) string {
	base := strings.TrimSuffix(name, ".csv")
	if i := strings.Index(base, "_"); i > 0 {
		base = base[:i]
	}
	return strings.ToUpper(base)
}

func loadSeriesCSV(path, symbol string) (*models.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrEmptySeries)
	}

	cols, err := columnIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	s := &models.Series{Symbol: symbol, Bars: make([]models.Bar, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		b, err := parseBar(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", symbol, i+2, err)
		}
		s.Bars = append(s.Bars, b)
	}

	sort.Slice(s.Bars, func(i, j int) bool { return s.Bars[i].Date.Before(s.Bars[j].Date) })
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

type barColumns struct {
	date, close, volume int
	offExchange, short  int // -1 when absent
}

func columnIndex(header []string) (barColumns, error) {
	cols := barColumns{date: -1, close: -1, volume: -1, offExchange: -1, short: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			cols.date = i
		case "close", "adj close", "adj_close":
			if cols.close == -1 { // plain close wins over adjusted
				cols.close = i
			}
		case "volume", "totalvolume", "total_volume":
			cols.volume = i
		case "off_exchange_volume", "offexchangevolume", "finravolume", "finra_volume":
			cols.offExchange = i
		case "short_volume", "shortvolume":
			cols.short = i
		}
	}
	if cols.date == -1 || cols.close == -1 || cols.volume == -1 {
		return cols, fmt.Errorf("header missing date/close/volume: %v", header)
	}
	return cols, nil
}

func parseBar(row []string, cols barColumns) (models.Bar, error) {
	var b models.Bar
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var err error
	b.Date, err = util.ParseBarDate(get(cols.date))
	if err != nil {
		return b, err
	}
	b.Close, err = strconv.ParseFloat(get(cols.close), 64)
	if err != nil {
		return b, fmt.Errorf("close: %w", err)
	}
	b.Volume, err = util.ParseVolume(get(cols.volume))
	if err != nil {
		return b, fmt.Errorf("volume: %w", err)
	}
	if v := get(cols.offExchange); v != "" {
		if b.OffExchangeVolume, err = util.ParseVolume(v); err != nil {
			return b, fmt.Errorf("off_exchange_volume: %w", err)
		}
	}
	if v := get(cols.short); v != "" {
		if b.ShortVolume, err = util.ParseVolume(v); err != nil {
			return b, fmt.Errorf("short_volume: %w", err)
		}
	}
	return b, nil
}
