package dashboard

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"github.com/qed-utility/portal-backend/database"
)

func TestFilterFromArgsTreatsNullAsUnset(t *testing.T) {
	p := graphql.ResolveParams{Args: map[string]interface{}{
		"circle":    nil,
		"activity":  "ALS",
		"startDate": nil,
		"endDate":   "2026-01-31",
	}}

	f := filterFromArgs(p)
	require.Equal(t, database.SummaryFilter{Activity: "ALS", End: "2026-01-31"}, f)
}

func TestFilterFromArgsDropsMalformedDates(t *testing.T) {
	p := graphql.ResolveParams{Args: map[string]interface{}{
		"circle":    "WB",
		"activity":  "",
		"startDate": "31/01/2026",
		"endDate":   "2026-02-28",
	}}

	f := filterFromArgs(p)
	require.Equal(t, database.SummaryFilter{Circle: "WB", End: "2026-02-28"}, f)
}

func TestStrArgMissingKey(t *testing.T) {
	p := graphql.ResolveParams{Args: map[string]interface{}{}}
	require.Empty(t, strArg(p, "siteId"))
}
