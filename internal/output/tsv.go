// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"
)

// Record is one rewritten import site in the final report.
type Record struct {
	From        string
	Line        int
	Kind        string // require, dynamic-import, esm-import, new-url
	Request     string // raw request argument text
	Pattern     string // derived request pattern
	Mapping     string // single, map, external, type-external, invalid
	Replacement string // generated expression
}

type TSVGenerator struct {
	records []Record
}

func NewTSVGenerator(records []Record) *TSVGenerator {
	return &TSVGenerator{records: records}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tLine\tKind\tRequest\tPattern\tMapping\tReplacement\n")

	for _, r := range t.records {
		buf.WriteString(fmt.Sprintf("%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.From, r.Line, r.Kind,
			sanitizeField(r.Request), sanitizeField(r.Pattern), r.Mapping, sanitizeField(r.Replacement)))
	}

	return buf.String(), nil
}

// sanitizeField keeps embedded tabs and newlines out of the column format.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
