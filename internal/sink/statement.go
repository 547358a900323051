package sink

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// dateOnly marks a time value that renders as a calendar date literal.
type dateOnly time.Time

// buildInsert renders a batch as a single bulk-write statement: target table,
// ordered column list, one literal tuple per record. Every value goes through
// literal(), so record contents can never alter the statement structure.
func buildInsert(table string, columns []string, rows [][]any) string {
	var sb strings.Builder
	sb.Grow(64 + len(rows)*len(columns)*16)

	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")

	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(literal(v))
		}
		sb.WriteByte(')')
	}

	return sb.String()
}

// literal renders a single field value as a statement literal. Strings and
// timestamps are always quoted; numeric kinds render bare.
func literal(v any) string {
	switch x := v.(type) {
	case string:
		return quote(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return quote(x.UTC().Format(timestampLayout))
	case dateOnly:
		return quote(time.Time(x).UTC().Format(dateLayout))
	default:
		return quote(fmt.Sprint(x))
	}
}

// quote wraps a string in single quotes, backslash-escaping quote,
// backslash, and control characters so the value stays inside the literal.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
