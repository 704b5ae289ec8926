package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	mem := &MemoryAPI{}
	scoped := NewScopedAPI("usps", mem)

	scoped.ReportBroken("session.login", "no token")
	scoped.ReportWarning("dashboard.get-packages")
	scoped.ReportDebug("get mail", "09/22/2017")
	scoped.ReportCount("dashboard.packages", 3)

	reports := mem.Reports()
	require.Len(t, reports, 4)
	require.Equal(t, "usps: session.login", reports[0].Id)
	require.Equal(t, "broken", reports[0].Kind)
	require.Equal(t, "usps: get mail", reports[2].Id)
	require.Equal(t, []any{int64(3)}, reports[3].Params)

	require.Equal(t, []string{"usps: session.login"}, mem.Broken())
	require.True(t, mem.Contains("09/22"))
	require.False(t, mem.Contains("hunter2"))
}

func TestSetupDisabled(t *testing.T) {
	var config Config
	require.False(t, config.Enabled())

	tel, err := Setup(context.Background(), "test:telemetry", config)
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}
