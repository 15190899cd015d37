package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Student Roster",
		Columns: []Column{
			{Key: "name", Title: "Name", Width: 2},
			{Key: "email", Title: "Email", Width: 3},
			{Key: "status"},
		},
		Rows: []map[string]string{
			{"name": "Ann Lee", "email": "ann@x.edu", "status": "Active"},
			{"name": "Bo, Jr", "email": "bo@x.edu"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,status\nAnn Lee,ann@x.edu,Active\n\"Bo, Jr\",bo@x.edu,\n", string(out))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsSplitByWeight(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns, 60)
	assert.InDeltaSlice(t, []float64{20, 30, 10}, widths, 0.0001)
}
