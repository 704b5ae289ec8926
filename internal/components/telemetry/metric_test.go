package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetricAPI(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	mem := &MemoryAPI{}
	api, err := NewMetricAPI(mem, provider.Meter("test:telemetry"))
	require.NoError(t, err)
	scoped := NewScopedAPI("usps", api)

	scoped.ReportCount("dashboard.get-packages", 2)
	scoped.ReportCount("dashboard.get-packages", 5)
	scoped.ReportCount("dashboard.get-mail", 3)
	scoped.ReportBroken("session.login", "rejected")
	scoped.ReportBroken("session.login", "rejected")
	scoped.ReportDebug("get mail")

	require.Len(t, mem.Reports(), 6)
	require.Equal(t, []string{"usps: session.login", "usps: session.login"}, mem.Broken())

	data := collect(t, reader)

	gauge, ok := data[metric_report_count].(metricdata.Gauge[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, point := range gauge.DataPoints {
		id, _ := point.Attributes.Value(attribute.Key("id"))
		counts[id.AsString()] = point.Value
	}
	require.Equal(t, map[string]int64{
		"usps: dashboard.get-packages": 5,
		"usps: dashboard.get-mail":     3,
	}, counts)

	sum, ok := data[metric_broken_reports].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.EqualValues(t, 2, sum.DataPoints[0].Value)
}
