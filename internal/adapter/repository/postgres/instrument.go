package postgres

import (
	"time"

	"github.com/craftly/ops-fec/internal/infrastructure/metrics"
)

func observeQuery(m *metrics.Metrics, operation, table string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.DBQueries.WithLabelValues(operation, table).Inc()
	m.DBDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		m.DBErrors.WithLabelValues(operation).Inc()
	}
}
