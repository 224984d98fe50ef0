// Package postgres регистрирует диалект PostgreSQL (драйвер pgx через
// database/sql).
package postgres

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Cruisoring/sqlkit/pkg/core/params"
	"github.com/Cruisoring/sqlkit/pkg/executor"
)

func init() {
	executor.Register(&executor.Dialect{
		Name:          "postgres",
		Driver:        "pgx",
		Placeholder:   executor.PlaceholderDollar,
		Detect:        detect,
		ProcedureCall: procedureCall,
		WithTimeout:   withTimeout,
	})
}

func detect(dsn string) bool {
	l := strings.ToLower(dsn)
	return strings.HasPrefix(l, "postgres://") || strings.HasPrefix(l, "postgresql://")
}

// procedureCall строит CALL name(@a, @b); выходные параметры драйвером
// не поддерживаются
func procedureCall(name string, binds []params.Binding) (string, error) {
	args := make([]string, 0, len(binds))
	for _, b := range binds {
		if b.Direction == params.Out {
			return "", fmt.Errorf("%w: procedure %s parameter %s",
				executor.ErrOutputNotSupported, name, b.Name)
		}
		args = append(args, "@"+b.Name)
	}
	return fmt.Sprintf("CALL %s(%s)", name, strings.Join(args, ", ")), nil
}

func withTimeout(dsn string, timeout time.Duration) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return dsn + sep + fmt.Sprintf("connect_timeout=%d", seconds)
}
