package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
	"salesdash/internal/testutil"
)

func TestLoadWorkbook(t *testing.T) {
	path := testutil.WriteSampleWorkbook(t, t.TempDir())

	ds, err := NewLoader("", nil).Load(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, ds.Records, 4)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, testutil.Header(), ds.ColumnNames())

	r := ds.Records[0]
	assert.True(t, r.SaleDate.Equal(testutil.Date("2024-01-05")), "got %v", r.SaleDate)
	assert.Equal(t, "Asia", r.Continent)
	assert.Equal(t, "P1", r.Product)
	assert.Equal(t, 10.0, r.Quantity)
	assert.Equal(t, 2.0, r.UnitPrice)
	assert.Equal(t, 1.0, r.UnitCost)
	assert.Equal(t, 20.0, r.Revenue)
}

func TestLoadWorkbookDetectsSheet(t *testing.T) {
	rows := [][]any{testutil.RecordRow(testutil.SampleRecords()[0])}
	path := testutil.WriteWorkbook(t, t.TempDir(), "other.xlsx", "Dados", testutil.Header(), rows)

	ds, err := NewLoader("Vendas", nil).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestLoadKeepsExtraColumns(t *testing.T) {
	header := append([]string{"ID"}, testutil.Header()...)
	row := append([]any{"T-1"}, testutil.RecordRow(testutil.SampleRecords()[1])...)
	path := testutil.WriteWorkbook(t, t.TempDir(), "extra.xlsx", "Vendas", header, [][]any{row})

	ds, err := NewLoader("", nil).Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, "ID", ds.Columns[0].Name)
	assert.Equal(t, models.FieldExtra, ds.Columns[0].Field)
	assert.Equal(t, []string{"T-1"}, ds.Records[0].Extra)
	assert.Equal(t, "Europe", ds.Records[0].Continent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader("", nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestLoadMissingColumn(t *testing.T) {
	header := testutil.Header()[:4] // no brand or numbers
	path := testutil.WriteWorkbook(t, t.TempDir(), "short.xlsx", "Vendas", header, [][]any{{"2024-01-01", "Asia", "A", "P1"}})

	_, err := NewLoader("", nil).Load(context.Background(), path)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Marca", pe.Column)
	assert.ErrorIs(t, err, errMissingColumn)
}

func TestLoadBadDate(t *testing.T) {
	row := testutil.RecordRow(testutil.SampleRecords()[0])
	row[0] = "yesterday"
	path := testutil.WriteWorkbook(t, t.TempDir(), "bad.xlsx", "Vendas", testutil.Header(), [][]any{row})

	_, err := NewLoader("", nil).Load(context.Background(), path)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Row)
	assert.Equal(t, "Data da Venda", pe.Column)
}

func TestLoadCSV(t *testing.T) {
	content := "sale_date,continent,category,product,brand,quantity,unit_price,unit_cost,revenue\n" +
		"2024-03-01,Asia,A,P1,B1,2,5.5,3,11\n" +
		"\n" +
		"2024-03-02 10:30:00,Europe,B,P2,B2,,4,1,0\n"
	path := testutil.WriteFile(t, t.TempDir(), "vendas.csv", content)

	ds, err := NewLoader("", nil).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, 5.5, ds.Records[0].UnitPrice)
	assert.Equal(t, 0.0, ds.Records[1].Quantity, "blank numeric reads as zero")
	assert.Equal(t, 10, ds.Records[1].SaleDate.Hour())
}

func TestReadCSVNonNumeric(t *testing.T) {
	content := "Data da Venda,Continente,Categoria,Produto,Marca,Qtd. Vendida,PrecoUnitario,Custo Unitário,Faturamento\n" +
		"2024-03-01,Asia,A,P1,B1,two,5,3,10\n"
	_, err := ReadCSV(strings.NewReader(content))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Qtd. Vendida", pe.Column)
}

func TestReadCSVNonFinite(t *testing.T) {
	header := "Data da Venda,Continente,Categoria,Produto,Marca,Qtd. Vendida,PrecoUnitario,Custo Unitário,Faturamento\n"
	for _, v := range []string{"NaN", "Inf", "+Inf", "-inf"} {
		content := header +
			"2024-03-01,Asia,A,P1,B1,1,5,3,10\n" +
			"2024-03-02,Asia,A,P1,B1,1,5,3," + v + "\n"
		_, err := ReadCSV(strings.NewReader(content))
		var pe *ParseError
		require.ErrorAs(t, err, &pe, v)
		assert.Equal(t, 3, pe.Row, v)
		assert.Equal(t, "Faturamento", pe.Column, v)
	}
}

func TestFoldHeader(t *testing.T) {
	cases := map[string]string{
		"Custo Unitário": "custounitario",
		"Qtd. Vendida":   "qtdvendida",
		" Data da Venda": "datadavenda",
		"unit_price":     "unitprice",
		"Diário":         "diario",
	}
	for in, want := range cases {
		assert.Equal(t, want, foldHeader(in), in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	got, err := parseDate("45296", true, false)
	require.NoError(t, err)
	assert.True(t, got.Equal(want), "serial: %v", got)

	got, err = parseDate("05/01/2024", false, false)
	require.NoError(t, err)
	assert.True(t, got.Equal(want), "dd/mm/yyyy: %v", got)

	_, err = parseDate("45296", false, false)
	assert.Error(t, err, "serials are only accepted from workbooks")

	_, err = parseDate("", true, false)
	assert.Error(t, err)
}
