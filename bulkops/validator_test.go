package bulkops

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qed-utility/portal-backend/model"
	"github.com/qed-utility/portal-backend/spreadsheet"
)

func testRefs() RefData {
	return NewRefData(model.Circles, model.Activities)
}

func uploadRow(number int, overrides map[string]string) spreadsheet.Row {
	fields := map[string]string{
		"qacajobid":    fmt.Sprintf("JOB-%d", number),
		"siteid":       fmt.Sprintf("SITE-%d", number),
		"sitename":     "Test Site",
		"circle":       "WB",
		"client":       "ACME",
		"activitytype": "BFS",
		"status":       "",
		"startdate":    "2026-01-15",
		"finalduedate": "",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	return spreadsheet.Row{Number: number, Fields: fields}
}

func TestValidateRowAcceptsCompleteRow(t *testing.T) {
	v := NewValidator(testRefs())

	record, reasons := v.ValidateRow(uploadRow(2, map[string]string{
		"finalduedate": "2026-03-01",
	}))
	require.Empty(t, reasons)
	require.Equal(t, "JOB-2", record.JobID)
	require.Equal(t, "WB", record.Circle)
	require.Equal(t, model.StatusPending, record.Status)
	require.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), record.StartDate)
	require.NotNil(t, record.DueDate)
}

func TestValidateRowCollectsAllReasons(t *testing.T) {
	v := NewValidator(testRefs())

	_, reasons := v.ValidateRow(uploadRow(2, map[string]string{
		"qacajobid":    "",
		"circle":       "Narnia",
		"activitytype": "Dowsing",
		"startdate":    "15/01/2026",
		"status":       "Done",
	}))
	require.Equal(t, []string{
		"Missing required field: qacajobid",
		"Invalid value 'Done' for status",
		"unknown Circle",
		"unknown Activity",
		"Invalid date '15/01/2026' for startdate",
	}, reasons)
}

func TestValidateBatchPartialRejection(t *testing.T) {
	v := NewValidator(testRefs())

	rows := []spreadsheet.Row{
		uploadRow(2, nil),
		uploadRow(3, nil),
		uploadRow(4, map[string]string{"activitytype": "Dowsing"}),
		uploadRow(5, nil),
		uploadRow(6, nil),
	}

	report := v.ValidateBatch(rows)
	require.Len(t, report.Accepted, 4)
	require.Len(t, report.Rejected, 1)
	require.Equal(t, 4, report.Rejected[0].Row)
	require.Equal(t, []string{"unknown Activity"}, report.Rejected[0].Reasons)
	require.False(t, report.Valid())
}

func TestValidateBatchRejectsDuplicateJobIDs(t *testing.T) {
	v := NewValidator(testRefs())

	rows := []spreadsheet.Row{
		uploadRow(2, map[string]string{"qacajobid": "JOB-X"}),
		uploadRow(3, map[string]string{"qacajobid": "job-x"}),
	}

	report := v.ValidateBatch(rows)
	require.Len(t, report.Accepted, 1)
	require.Len(t, report.Rejected, 1)
	require.Equal(t, 3, report.Rejected[0].Row)
	require.Contains(t, report.Rejected[0].Reasons, "Duplicate qacajobid in file")
}

func TestValidateRowStatusValues(t *testing.T) {
	v := NewValidator(testRefs())

	record, reasons := v.ValidateRow(uploadRow(2, map[string]string{"status": "Completed"}))
	require.Empty(t, reasons)
	require.Equal(t, model.StatusCompleted, record.Status)
}

// Exported files fill empty cells with "N/A". Re-importing one must yield
// the original records, with the placeholders reading back as unset.
func TestExportedFileReimportsCleanly(t *testing.T) {
	exported := []map[string]string{
		{
			"qacajobid":    "JOB-1",
			"siteid":       "SITE-1",
			"circle":       "WB",
			"activitytype": "BFS",
			"status":       model.StatusPending,
			"startdate":    "2026-01-15",
			// sitename, client and finalduedate left unset
		},
		{
			"qacajobid":    "JOB-2",
			"siteid":       "SITE-2",
			"sitename":     "North Yard",
			"circle":       "CG",
			"client":       "ACME",
			"activitytype": "ALS",
			"status":       model.StatusCompleted,
			"startdate":    "2026-02-01",
			"finalduedate": "2026-03-01",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, spreadsheet.Write(&buf, UploadColumns, exported))

	rows, err := spreadsheet.Parse(&buf, RequiredColumns, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	report := NewValidator(testRefs()).ValidateBatch(rows)
	require.Empty(t, report.Rejected)
	require.Len(t, report.Accepted, 2)

	first := report.Accepted[0]
	require.Equal(t, "JOB-1", first.JobID)
	require.Empty(t, first.SiteName)
	require.Empty(t, first.Client)
	require.Nil(t, first.DueDate)

	second := report.Accepted[1]
	require.Equal(t, "North Yard", second.SiteName)
	require.Equal(t, "ACME", second.Client)
	require.NotNil(t, second.DueDate)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *second.DueDate)
}
