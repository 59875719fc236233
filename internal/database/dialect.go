package database

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/matthieukhl/shopstats/internal/config"
)

// Dialect captures what differs between the supported stores: the
// database/sql driver name, how relations are discovered, identifier quoting
// and bind placeholders.
type Dialect struct {
	Name        string
	DriverName  string
	TablesQuery string

	// DateTimeType is the column type the fixture uses for dates
	DateTimeType string

	quote       func(string) string
	placeholder func(int) string
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func backtick(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func questionMark(int) string { return "?" }

func dollar(i int) string { return fmt.Sprintf("$%d", i) }

var dialects = map[string]Dialect{
	config.DriverSQLite: {
		Name:       config.DriverSQLite,
		DriverName: "sqlite",
		TablesQuery: `SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`,
		DateTimeType: "DATETIME",
		quote:        doubleQuote,
		placeholder:  questionMark,
	},
	config.DriverMySQL: {
		Name:       config.DriverMySQL,
		DriverName: "mysql",
		TablesQuery: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
			ORDER BY table_name`,
		DateTimeType: "DATETIME",
		quote:        backtick,
		placeholder:  questionMark,
	},
	config.DriverPostgres: {
		Name:       config.DriverPostgres,
		DriverName: "postgres",
		TablesQuery: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
			ORDER BY table_name`,
		DateTimeType: "TIMESTAMP",
		quote:        doubleQuote,
		placeholder:  dollar,
	},
}

// DialectFor returns the dialect of a configured driver
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported store driver: %q", driver)
	}
	return d, nil
}

// Quote quotes an identifier for use in a statement
func (d Dialect) Quote(ident string) string {
	return d.quote(ident)
}

// Placeholder returns the bind marker of the i-th (1-based) argument
func (d Dialect) Placeholder(i int) string {
	return d.placeholder(i)
}

// selectColumns builds SELECT c1, c2 FROM table ORDER BY orderBy
func (d Dialect) selectColumns(table string, columns []string, orderBy ...string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), d.Quote(table))
	if len(orderBy) > 0 {
		keys := make([]string, len(orderBy))
		for i, c := range orderBy {
			keys[i] = d.Quote(c)
		}
		query += " ORDER BY " + strings.Join(keys, ", ")
	}
	return query
}
