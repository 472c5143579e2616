package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

func TestWriteWorkbook(t *testing.T) {
	customers := []models.CustomerSubmission{
		{TrackID: "IF-250307-0001", Name: "Asha", Phone: "0984500000", Image: "Asha_rose.png", SubmittedAt: "2025-03-07 14:30", Status: models.StatusApproved},
	}
	employees := []models.EmployeeApplication{
		{TrackID: "EMP-250307-0001", Name: "Ravi", Phone: "99001", NationalID: "0123 4567 8901", WorkType: "aari", Status: models.StatusPending, SalaryModel: models.DefaultSalaryModel},
		{TrackID: "EMP-250307-0002", Name: "Lata", Status: models.StatusRejected},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, customers, employees))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{CustomersSheet, EmployeesSheet}, f.GetSheetList())

	rows, err := f.GetRows(CustomersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Track ID", rows[0][0])
	assert.Equal(t, "IF-250307-0001", rows[1][0])
	assert.Equal(t, "0984500000", rows[1][2])
	assert.Equal(t, "approved", rows[1][6])

	rows, err = f.GetRows(EmployeesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "0123 4567 8901", rows[1][3])
	assert.Equal(t, "Not decided", rows[1][9])
	assert.Equal(t, "rejected", rows[2][8])
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(EmployeesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(employeeHeader))
}
