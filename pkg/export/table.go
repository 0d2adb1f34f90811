package export

import "fmt"

// Table is ordered tabular export content. Every row must have len(Headers) cells.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
}

func (t Table) validate(format string) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", format, i, len(row), len(t.Headers))
		}
	}
	return nil
}
