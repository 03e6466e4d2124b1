package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const sampleExport = "Lista de Precios Intcomex\n" +
	"US$1 = CLP$935\n" +
	"SKU\tNombre\tPrecio\tDisponibilidad\tCategoría\tSubcategoría\n" +
	"AB123\tNotebook HP 15\"\t487,50\t11 en inventario\tComputadores\tNotebooks\n" +
	"CD456\tMonitor LG 24\"\t150.000\tMás de 20\tMonitores\tLED\n" +
	"EF789\tTablet Samsung\t\tSin stock\tComputadores\tTablets\n"

func encodeUTF16LE(t *testing.T, s string) []byte {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestParse_UTF16WithHeaderOffset(t *testing.T) {
	catalog, err := Parse(encodeUTF16LE(t, sampleExport))
	require.NoError(t, err)

	assert.Equal(t, "utf-16le", catalog.Encoding)
	assert.Equal(t, 2, catalog.HeaderOffset)
	require.Len(t, catalog.Rows, 3)

	first := catalog.Rows[0]
	assert.Equal(t, "AB123", first.SKU)
	assert.Equal(t, "Notebook HP 15\"", first.Name)
	assert.Equal(t, "487,50", first.PriceText)
	assert.Equal(t, "11 en inventario", first.StockText)
	assert.Equal(t, "Computadores", first.Category)
	assert.Equal(t, "Notebooks", first.Subcategory)

	// Missing price cell comes through as an empty string, not an error.
	assert.Equal(t, "", catalog.Rows[2].PriceText)
}

func TestParse_UTF8NoOffset(t *testing.T) {
	export := "SKU\tNombre\tPrecio\n" +
		"XY1\tAlgo\t12,50\n"
	catalog, err := Parse([]byte(export))
	require.NoError(t, err)
	assert.Equal(t, "utf-8", catalog.Encoding)
	assert.Equal(t, 0, catalog.HeaderOffset)
	require.Len(t, catalog.Rows, 1)
	assert.Equal(t, "XY1", catalog.Rows[0].SKU)
}

func TestParse_Latin1Accents(t *testing.T) {
	text := "SKU\tNombre\tPrecio\tCategoría\n" +
		"ZZ9\tCámara\t99,90\tFotografía\n"
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	catalog, parseErr := Parse(raw)
	require.NoError(t, parseErr)
	require.Len(t, catalog.Rows, 1)
	assert.Equal(t, "Cámara", catalog.Rows[0].Name)
	assert.Equal(t, "Fotografía", catalog.Rows[0].Category)
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	export := "SKU\tNombre\tPrecio\n" +
		"OK1\tBueno\t10,00\n" +
		"BAD\ttoo\tmany\tcells\there\n" +
		"OK2\tBueno\t20,00\n"
	catalog, err := Parse([]byte(export))
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Skipped)
	require.Len(t, catalog.Rows, 2)
	assert.Equal(t, "OK1", catalog.Rows[0].SKU)
	assert.Equal(t, "OK2", catalog.Rows[1].SKU)
}

func TestParse_ShortLinesPadded(t *testing.T) {
	export := "SKU\tNombre\tPrecio\tDisponibilidad\n" +
		"OK1\tCorto\n"
	catalog, err := Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, catalog.Rows, 1)
	assert.Equal(t, "OK1", catalog.Rows[0].SKU)
	assert.Equal(t, "", catalog.Rows[0].PriceText)
	assert.Equal(t, "", catalog.Rows[0].StockText)
}

func TestParse_NoHeaderIsFatal(t *testing.T) {
	export := strings.Repeat("metadata line without markers\n", 25)
	_, err := Parse([]byte(export))
	assert.Error(t, err)
}

func TestParse_MissingRequiredColumnsIsFatal(t *testing.T) {
	// A category marker finds the header, but neither sku nor price resolve.
	export := "Categoría\tPeso\tColor\n" +
		"Monitores\t5kg\tNegro\n"
	_, err := Parse([]byte(export))
	assert.Error(t, err)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestResolveFields_SubstringFallback(t *testing.T) {
	fields := resolveFields([]string{"Código de Parte (SKU)", "Descripción del Producto", "Precio Unitario USD", "Disponibilidad Bodega"})
	assert.Equal(t, 0, fields[FieldSKU])
	assert.Equal(t, 1, fields[FieldName])
	assert.Equal(t, 2, fields[FieldPrice])
	assert.Equal(t, 3, fields[FieldStock])
}

func TestResolveFields_SubcategoryNotShadowedByCategory(t *testing.T) {
	fields := resolveFields([]string{"SKU", "Precio", "Subcategoría", "Categoría"})
	assert.Equal(t, 2, fields[FieldSubcategory])
	assert.Equal(t, 3, fields[FieldCategory])
}
