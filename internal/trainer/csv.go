package trainer

import "strings"

// splitCSVFields splits one CSV-quoted record into fields. Only the minimal
// dialect spec.md needs is supported: '"' quotes a field that contains a
// comma, and "" inside a quoted field is a literal quote. This is not the
// file-ingestion CSV reader (spec.md's Non-goals place "CSV file ingestion"
// outside this package's scope, left to callers); it exists only because
// recovering the POS-tuple prefix from a FEATURE_CSV column
// (spec.md §6 "SURFACE\tFEATURE_CSV") requires field-aware splitting, not
// byte splitting, whenever a feature value itself contains a comma.
func splitCSVFields(row string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	runes := []rune(row)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuotes:
			if r == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					cur.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				cur.WriteRune(r)
			}
		case r == '"' && cur.Len() == 0:
			inQuotes = true
		case r == ',':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// joinCSVFields is splitCSVFields's inverse, re-quoting any field that
// contains a comma or quote so the result is a single well-formed column.
func joinCSVFields(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		if strings.ContainsAny(f, ",\"") {
			quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		} else {
			quoted[i] = f
		}
	}
	return strings.Join(quoted, ",")
}
