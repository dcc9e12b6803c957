package upload_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/upload"
)

func electronics(t *testing.T) models.Schema {
	t.Helper()
	s, err := models.LookupSchema("electronics")
	require.NoError(t, err)
	return s
}

const bomCSV = "Designator,Model,Value,Footprint,Qty\n" +
	"R1,resistor,10k,0603,4\n" +
	",,,,\n" +
	"C1,capacitor,NaN,0402,\n"

func TestParseCSV(t *testing.T) {
	sheet, err := upload.Parse("bom.CSV", strings.NewReader(bomCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Designator", "Model", "Value", "Footprint", "Qty"}, sheet.Columns)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "", sheet.Rows[1][2], "null sentinels are blanked")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]interface{}{"名称", "", "数量"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]interface{}{"LED", "x", 12}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	sheet, err := upload.Parse("intake.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"名称", "column 2", "数量"}, sheet.Columns)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, []string{"LED", "x", "12"}, sheet.Rows[0])
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := upload.Parse("bom.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, upload.ErrUnsupportedFormat)

	_, err = upload.Parse("bom.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, upload.ErrUnsupportedFormat)

	_, err = upload.Parse("bom.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, upload.ErrEmptySheet)
}

func TestSuggestMapping(t *testing.T) {
	schema := electronics(t)

	mapping := upload.SuggestMapping(schema, upload.PurposeBOM, []string{"Designator", "Model", "Value", "Footprint", "Qty"})
	assert.Equal(t, upload.Mapping{
		"name":      "Model",
		"parameter": "Value",
		"package":   "Footprint",
		"quantity":  "Qty",
	}, mapping)

	fallback := upload.SuggestMapping(schema, upload.PurposeIntake, []string{"A", "B"})
	assert.Equal(t, "A", fallback["name"])
	assert.Equal(t, "A", fallback["quantity"])
	assert.Equal(t, upload.NoColumn, fallback["parameter"])
	assert.Equal(t, upload.NoColumn, fallback["category"])
}

func TestBOMLines(t *testing.T) {
	schema := electronics(t)
	sheet, err := upload.Parse("bom.csv", strings.NewReader(bomCSV))
	require.NoError(t, err)

	lines, err := upload.BOMLines(schema, sheet, upload.Mapping{
		"name":      "Model",
		"parameter": "Value",
		"package":   upload.NoColumn,
		"quantity":  "Qty",
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 2, lines[0].Line)
	assert.Equal(t, map[string]string{"name": "resistor", "parameter": "10k", "package": ""}, lines[0].Fields)
	assert.Equal(t, "4", lines[0].Quantity)
	assert.Equal(t, "", lines[1].Quantity)
}

func TestIntakeLinesRequireMandatoryTargets(t *testing.T) {
	schema := electronics(t)
	sheet, err := upload.Parse("in.csv", strings.NewReader(bomCSV))
	require.NoError(t, err)

	_, err = upload.IntakeLines(schema, sheet, upload.Mapping{"name": "Model", "quantity": upload.NoColumn})
	assert.ErrorIs(t, err, upload.ErrMissingMapping)

	_, err = upload.IntakeLines(schema, sheet, upload.Mapping{"name": "Model", "quantity": "Qty", "category": "Missing"})
	assert.ErrorIs(t, err, upload.ErrMissingMapping)

	lines, err := upload.IntakeLines(schema, sheet, upload.Mapping{"name": "Model", "quantity": "Qty"})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "capacitor", lines[1].Fields["name"])
	assert.Contains(t, lines[1].Fields, "category")
}

func TestParsePurpose(t *testing.T) {
	p, ok := upload.ParsePurpose("")
	assert.True(t, ok)
	assert.Equal(t, upload.PurposeIntake, p)

	p, ok = upload.ParsePurpose("BOM")
	assert.True(t, ok)
	assert.Equal(t, upload.PurposeBOM, p)

	_, ok = upload.ParsePurpose("export")
	assert.False(t, ok)
}
