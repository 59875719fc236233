package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/shopspring/decimal"
)

// WriteCSV writes a header row with the column names followed by one record
// per row
func WriteCSV(w io.Writer, rs analytics.ResultSet) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(rs.Columns); err != nil {
		return err
	}
	for _, row := range rs.Rows {
		if err := csvWriter.Write(formatRow(row)); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// ReadCSV parses what WriteCSV produced. Every cell comes back as a string,
// empty cells as nil.
func ReadCSV(r io.Reader) (analytics.ResultSet, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return analytics.ResultSet{}, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return analytics.ResultSet{}, fmt.Errorf("invalid csv: missing header row")
	}

	rs := analytics.ResultSet{Columns: records[0], Rows: make([][]any, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			if cell != "" {
				row[i] = cell
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

func formatRow(row []any) []string {
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = formatCell(v)
	}
	return record
}

// formatCell converts a cell to its text form
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case decimal.Decimal:
		return val.String()
	case time.Time:
		if h, m, s := val.Clock(); h == 0 && m == 0 && s == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.DateTime)
	case *time.Time:
		if val == nil {
			return ""
		}
		return formatCell(*val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
