// Package mssql регистрирует диалект Microsoft SQL Server.
// Единственный диалект с поддержкой выходных параметров процедур.
package mssql

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/Cruisoring/sqlkit/pkg/core/params"
	"github.com/Cruisoring/sqlkit/pkg/executor"
)

func init() {
	executor.Register(&executor.Dialect{
		Name:           "mssql",
		Driver:         "sqlserver",
		Placeholder:    executor.PlaceholderNamed,
		SupportsOutput: true,
		Detect:         detect,
		ProcedureCall:  procedureCall,
		WithTimeout:    withTimeout,
	})
}

func detect(dsn string) bool {
	l := strings.ToLower(dsn)
	// DSN= и Driver= - территория ODBC, даже если внутри есть Server=
	if strings.HasPrefix(l, "dsn=") || strings.HasPrefix(l, "driver=") {
		return false
	}
	return strings.HasPrefix(l, "sqlserver://") || strings.Contains(l, "server=")
}

// procedureCall строит EXEC name @a = @a, @out = @out OUTPUT
func procedureCall(name string, binds []params.Binding) (string, error) {
	if len(binds) == 0 {
		return "EXEC " + name, nil
	}
	args := make([]string, 0, len(binds))
	for _, b := range binds {
		arg := fmt.Sprintf("@%s = @%s", b.Name, b.Name)
		if b.Direction == params.Out {
			arg += " OUTPUT"
		}
		args = append(args, arg)
	}
	return fmt.Sprintf("EXEC %s %s", name, strings.Join(args, ", ")), nil
}

func withTimeout(dsn string, timeout time.Duration) string {
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if strings.HasPrefix(strings.ToLower(dsn), "sqlserver://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + fmt.Sprintf("dial+timeout=%d", seconds)
	}
	// ADO-стиль: пары ключ=значение через точку с запятой
	return dsn + fmt.Sprintf(";connection timeout=%d", seconds)
}
