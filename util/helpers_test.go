package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2026-02-28 ")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("28/02/2026")
	require.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	require.Equal(t, "2026-02-28", NormalizeDate("2026-02-28"))
	require.Equal(t, "", NormalizeDate(""))
	require.Equal(t, "", NormalizeDate("garbage"))
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "", FormatDate(nil))
	d := time.Date(2026, 2, 28, 10, 30, 0, 0, time.UTC)
	require.Equal(t, "2026-02-28", FormatDate(&d))
}
