package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core/report"
)

func TestExcel_roundTrip(t *testing.T) {
	xl := NewExcel()
	sheet := report.Sheet{
		Name:   "Enrollment",
		Header: []string{"Class", "Form", "Stream", "Students"},
		Rows: [][]string{
			{"Form 1 Blue", "Form 1", "Blue", "32"},
			{"Form 1 Red", "Form 1", "Red", "0"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, xl.WriteSheet(&buf, sheet))

	rows, err := xl.ReadRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, [][]string{sheet.Header, sheet.Rows[0], sheet.Rows[1]}, rows)
}

func TestExcel_ReadRows_invalid(t *testing.T) {
	_, err := NewExcel().ReadRows(bytes.NewBufferString("first,last\nJohn,Doe\n"))
	assert.Error(t, err)
}
