package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, start, &rows[i]))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseNormalizesHeadersAndRowNumbers(t *testing.T) {
	buf := buildFile(t, [][]interface{}{
		{"  QACAJobID ", "SiteID", "Circle"},
		{"JOB-1", "S-1", "WB"},
		{"", "", ""}, // blank row, skipped
		{"JOB-2", "S-2", "TN"},
	})

	rows, err := Parse(buf, []string{"qacajobid", "siteid"}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, 2, rows[0].Number)
	require.Equal(t, "JOB-1", rows[0].Get("qacajobid"))
	require.Equal(t, "WB", rows[0].Get("circle"))
	// the blank row keeps Excel numbering intact
	require.Equal(t, 4, rows[1].Number)
	require.Equal(t, "JOB-2", rows[1].Get("qacajobid"))
}

func TestParseMissingRequiredColumn(t *testing.T) {
	buf := buildFile(t, [][]interface{}{
		{"qacajobid", "siteid"},
		{"JOB-1", "S-1"},
	})

	_, err := Parse(buf, []string{"qacajobid", "circle"}, 0)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "missing required column: circle", parseErr.Reason)
}

func TestParseRejectsNonSpreadsheet(t *testing.T) {
	_, err := Parse(strings.NewReader("this is not an xlsx"), nil, 0)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseRejectsHeaderOnlyFile(t *testing.T) {
	buf := buildFile(t, [][]interface{}{
		{"qacajobid", "siteid"},
	})

	_, err := Parse(buf, []string{"qacajobid"}, 0)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "file has no data rows", parseErr.Reason)
}

func TestParseEnforcesRowCap(t *testing.T) {
	data := [][]interface{}{{"qacajobid"}}
	for i := 0; i < 3; i++ {
		data = append(data, []interface{}{"JOB"})
	}
	buf := buildFile(t, data)

	_, err := Parse(buf, []string{"qacajobid"}, 2)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "maximum 2 rows allowed", parseErr.Reason)
}

func TestWriteThenParseRoundTrip(t *testing.T) {
	columns := []string{"qacajobid", "siteid", "circle"}
	in := []map[string]string{
		{"qacajobid": "JOB-1", "siteid": "S-1", "circle": "WB"},
		{"qacajobid": "JOB-2", "siteid": "S-2"}, // circle unset, exported as N/A
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, columns, in))

	rows, err := Parse(&buf, columns, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "JOB-1", rows[0].Get("qacajobid"))
	require.Equal(t, "WB", rows[0].Get("circle"))
	require.Equal(t, "N/A", rows[1].Get("circle"))
}
