package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: test
data:
  source: csv
  dir: /tmp/bars
  out_dir: /tmp/out
engine:
  workers: 4
  min_trades: 10
  score_shorts_inverted: true
grid:
  family: off_exchange
  analysis_days: [3, 4, 5]
  holding_days: [5, 7]
  off_exchange_thresholds: [35, 40]
  price_stability_thresholds: [1.0, 1.5]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Data.Dir != "/tmp/bars" || c.Engine.Workers != 4 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if len(c.Grid.AnalysisDays) != 3 || c.Grid.Family != "off_exchange" {
		t.Fatalf("grid parsed wrong: %+v", c.Grid)
	}
	if !c.Engine.ScoreShortsInverted {
		t.Fatal("score_shorts_inverted should be true")
	}
}

func TestLoadRejectsUnknownFamily(t *testing.T) {
	bad := `
environment: test
data:
  source: csv
  dir: /tmp/bars
grid:
  family: astrology
  analysis_days: [3]
  holding_days: [5]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("unknown rule family must fail validation")
	}
}

func TestLoadRejectsMissingDataDir(t *testing.T) {
	bad := `
environment: test
data:
  source: csv
grid:
  family: off_exchange
  analysis_days: [3]
  holding_days: [5]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("csv source without data.dir must fail validation")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/data/override")
	t.Setenv("SYMBOLS", "AAA,BBB")
	t.Setenv("WORKERS", "8")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Data.Dir != "/data/override" {
		t.Fatalf("DATA_DIR override ignored: %s", c.Data.Dir)
	}
	if len(c.Data.Symbols) != 2 || c.Data.Symbols[0] != "AAA" {
		t.Fatalf("SYMBOLS override ignored: %v", c.Data.Symbols)
	}
	if c.Engine.Workers != 8 {
		t.Fatalf("WORKERS override ignored: %d", c.Engine.Workers)
	}
}
