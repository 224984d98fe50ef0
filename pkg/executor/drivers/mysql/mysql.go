// Package mysql регистрирует диалект MySQL/MariaDB.
package mysql

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Cruisoring/sqlkit/pkg/core/params"
	"github.com/Cruisoring/sqlkit/pkg/executor"
)

func init() {
	executor.Register(&executor.Dialect{
		Name:          "mysql",
		Driver:        "mysql",
		Placeholder:   executor.PlaceholderQuestion,
		Detect:        detect,
		ProcedureCall: procedureCall,
		WithTimeout:   withTimeout,
	})
}

// DSN формата user:pass@tcp(host:port)/dbname
func detect(dsn string) bool {
	return strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(")
}

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
	return dsn + sep + fmt.Sprintf("timeout=%s", timeout)
}
