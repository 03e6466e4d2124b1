package parser

import "strings"

// Field identifies one canonical column of the catalog export.
type Field int

const (
	FieldSKU Field = iota
	FieldName
	FieldPrice
	FieldStock
	FieldAttributes
	FieldSubcategory
	FieldCategory
)

// fieldSpec declares how a canonical field is matched against the header:
// exact candidates first, substring candidates only as a fallback. Headers
// are compared lowercased and trimmed.
type fieldSpec struct {
	field      Field
	exact      []string
	substrings []string
}

// FieldSubcategory is listed before FieldCategory so that the "categor"
// substring fallback cannot claim a "subcategoría" column first.
var fieldSpecs = []fieldSpec{
	{FieldSKU, []string{"sku"}, []string{"sku", "código", "codigo", "parte"}},
	{FieldName, []string{"nombre"}, []string{"nombre", "name", "descripción", "descripcion", "producto"}},
	{FieldPrice, []string{"precio"}, []string{"precio", "price", "costo", "cost"}},
	{FieldStock, []string{"disponibilidad"}, []string{"disponibilidad", "stock", "existencia", "cantidad", "inventario"}},
	{FieldAttributes, []string{"atributos"}, []string{"atributo", "attribute"}},
	{FieldSubcategory, []string{"subcategoría", "subcategoria"}, []string{"subcategor"}},
	{FieldCategory, []string{"categoría", "categoria"}, []string{"categor"}},
}

// FieldMap maps canonical fields to their column index in one parsed file.
type FieldMap map[Field]int

// resolveFields builds the name→index table for a header row. Each column is
// claimed by at most one field; the exact pass runs for every field before
// any substring fallback is tried.
func resolveFields(header []string) FieldMap {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	fields := make(FieldMap)
	claimed := make(map[int]bool)

	for _, spec := range fieldSpecs {
		for i, name := range normalized {
			if claimed[i] {
				continue
			}
			if containsExact(spec.exact, name) {
				fields[spec.field] = i
				claimed[i] = true
				break
			}
		}
	}

	for _, spec := range fieldSpecs {
		if _, ok := fields[spec.field]; ok {
			continue
		}
		for i, name := range normalized {
			if claimed[i] {
				continue
			}
			if containsSubstring(spec.substrings, name) {
				fields[spec.field] = i
				claimed[i] = true
				break
			}
		}
	}

	return fields
}

func containsExact(candidates []string, name string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func containsSubstring(candidates []string, name string) bool {
	for _, c := range candidates {
		if strings.Contains(name, c) {
			return true
		}
	}
	return false
}

// value returns the cell for a field, or "" when the column is absent or the
// line is short.
func (m FieldMap) value(field Field, cells []string) string {
	idx, ok := m[field]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}
