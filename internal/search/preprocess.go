package search

import (
	"bufio"
	"io"
	"strings"
)

// FlattenTables rewrites Markdown tables into one paragraph per data row,
// pairing each cell with its column header ("Figura: quadrado; Área: l²").
// Everything outside tables is copied unchanged.
func FlattenTables(r io.Reader) ([]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		b      strings.Builder
		header []string
		inRows bool
	)

	for sc.Scan() {
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if !isTableRow(line) {
			if header != nil {
				if !inRows {
					writeRow(&b, nil, header)
				}
				header, inRows = nil, false
				b.WriteByte('\n')
			}
			b.WriteString(raw)
			b.WriteByte('\n')
			continue
		}

		cells := splitRow(line)
		switch {
		case header == nil:
			header = cells
		case isSeparator(cells):
			inRows = true
		default:
			if !inRows {
				// No separator line: the first row was data too.
				writeRow(&b, nil, header)
				inRows = true
			}
			writeRow(&b, header, cells)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if header != nil && !inRows {
		writeRow(&b, nil, header)
	}
	return []byte(b.String()), nil
}

func isTableRow(line string) bool {
	return len(line) > 1 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

func splitRow(line string) []string {
	parts := strings.Split(strings.Trim(line, "|"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, ":- ") != "" {
			return false
		}
	}
	return true
}

func writeRow(b *strings.Builder, header, cells []string) {
	var parts []string
	for i, c := range cells {
		if c == "" {
			continue
		}
		if i < len(header) && header[i] != "" {
			parts = append(parts, header[i]+": "+c)
		} else {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Join(parts, "; "))
	b.WriteByte('\n')
}
