package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalDateTimeRoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	wire, err := ParseLocalDateTime("2023-03-01T21:23", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 3, 1, 19, 23, 0, 0, time.UTC), *wire)

	require.Equal(t, "2023-03-01T21:23", FormatLocalDateTime(wire, loc))
	require.Equal(t, "01/03/23 21:23", FormatDisplayDateTime(wire, loc))
}

func TestParseLocalDateTime_Empty(t *testing.T) {
	got, err := ParseLocalDateTime("  ", time.UTC)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = ParseLocalDateTime("yesterday", time.UTC)
	require.Error(t, err)
}

func TestDefaultLocalDateTime(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 59, 999, time.UTC)
	require.Equal(t, "2024-05-06T07:08", DefaultLocalDateTime(now, time.UTC))
	require.Equal(t, "", FormatLocalDateTime(nil, time.UTC))
}
