package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl("America/New_York")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", impl.Location().String())
	require.Equal(t, impl.Location(), impl.Now().Location())

	local, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, time.Local, local.Location())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestDate(t *testing.T) {
	at := time.Date(2017, 9, 22, 19, 14, 5, 10, time.UTC)
	require.Equal(t, time.Date(2017, 9, 22, 0, 0, 0, 0, time.UTC), Date(at))

	fixed := FixedImpl{Time: at}
	require.Equal(t, at, fixed.Now())
	require.Equal(t, time.UTC, fixed.Location())
}
