package service

import (
	"context"

	"DarkScan/internal/domain/models"
)

// WindowAnalyzer derives scalar metrics from the window of length bars
// starting at start. The series is needed beyond the window itself because
// the volume baseline trails behind it.
type WindowAnalyzer interface {
	Compute(s *models.Series, start, length int) models.WindowMetrics
}

// Classifier maps window metrics to a discrete signal under one configuration.
type Classifier interface {
	Classify(m models.WindowMetrics, cfg models.Configuration) models.Signal
}

// Screener runs the unusual-dollar-volume screen over a symbol universe.
type Screener interface {
	Screen(ctx context.Context, series []*models.Series, req models.ScreenRequest) ([]models.ScreenResult, error)
}
