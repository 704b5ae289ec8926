package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metric_report_count   = "report_count"
	metric_broken_reports = "broken_reports"
)

// MetricAPI forwards every report to another API and also records counts as
// an otel gauge and broken reports as a counter, both keyed by report id.
type MetricAPI struct {
	inner  API
	counts metric.Int64Gauge
	broken metric.Int64Counter
}

func NewMetricAPI(inner API, meter metric.Meter) (MetricAPI, error) {
	counts, err := meter.Int64Gauge(metric_report_count)
	if err != nil {
		return MetricAPI{}, err
	}
	broken, err := meter.Int64Counter(metric_broken_reports)
	if err != nil {
		return MetricAPI{}, err
	}
	return MetricAPI{inner: inner, counts: counts, broken: broken}, nil
}

func idAttribute(id string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("id", id))
}

func (m MetricAPI) ReportBroken(id string, params ...any) {
	m.broken.Add(context.Background(), 1, idAttribute(id))
	m.inner.ReportBroken(id, params...)
}

func (m MetricAPI) ReportWarning(id string, params ...any) {
	m.inner.ReportWarning(id, params...)
}

func (m MetricAPI) ReportDebug(msg string, params ...any) {
	m.inner.ReportDebug(msg, params...)
}

func (m MetricAPI) ReportCount(id string, count int64) {
	m.counts.Record(context.Background(), count, idAttribute(id))
	m.inner.ReportCount(id, count)
}
