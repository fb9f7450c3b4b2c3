package repository

import (
	"context"

	"RateScope/internal/domain/models"
)

// DatasetProvider assembles the two startup documents: the time-series
// dataset and the default rule coefficients. Either failing aborts
// initialization; there is no partial-success mode.
type DatasetProvider interface {
	Load(ctx context.Context) (*models.Dataset, models.RuleParameters, error)
}

// SourceStatus reports per-source cache state for the status endpoint.
type SourceStatus interface {
	Status(ctx context.Context) map[string]interface{}
}

// DataSource is what the app wires in: a provider that can also
// describe itself for the status endpoint. Both concrete providers
// satisfy it.
type DataSource interface {
	DatasetProvider
	SourceStatus
}

type Metrics interface {
	RecordRecompute()
	RecordCoalesced(n int)
	RecordFetch(source string, seconds float64)
	RecordFetchError(source string)
	RecordExport(chart, format string, seconds float64)
	SetConnectedViews(n int)
}
