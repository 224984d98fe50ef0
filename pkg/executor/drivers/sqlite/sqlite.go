// Package sqlite регистрирует диалект SQLite (драйвер modernc.org/sqlite,
// без cgo).
package sqlite

import (
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Cruisoring/sqlkit/pkg/executor"
)

func init() {
	executor.Register(&executor.Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Placeholder: executor.PlaceholderQuestion,
		Detect:      detect,
		WithTimeout: withTimeout,
		// Хранимых процедур в SQLite нет - ProcedureCall не задан
	})
}

func detect(dsn string) bool {
	l := strings.ToLower(dsn)
	return l == ":memory:" ||
		strings.HasPrefix(l, "file:") ||
		strings.HasSuffix(l, ".db") ||
		strings.HasSuffix(l, ".sqlite") ||
		strings.HasSuffix(l, ".sqlite3")
}

func withTimeout(dsn string, timeout time.Duration) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + fmt.Sprintf("_busy_timeout=%d", timeout.Milliseconds())
}
