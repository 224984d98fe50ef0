//go:build cgo || windows

// Package odbc регистрирует диалект для произвольных ODBC источников.
package odbc

import (
	"fmt"
	"strings"

	_ "github.com/alexbrainman/odbc"

	"github.com/Cruisoring/sqlkit/pkg/core/params"
	"github.com/Cruisoring/sqlkit/pkg/executor"
)

func init() {
	executor.Register(&executor.Dialect{
		Name:          "odbc",
		Driver:        "odbc",
		Placeholder:   executor.PlaceholderQuestion,
		Detect:        detect,
		ProcedureCall: procedureCall,
		// Таймаут зависит от конкретного ODBC драйвера - не задаем
	})
}

// DSN формата DSN=name;... либо Driver={...};Server=...
func detect(dsn string) bool {
	l := strings.ToLower(dsn)
	return strings.HasPrefix(l, "dsn=") || strings.HasPrefix(l, "driver=")
}

// procedureCall строит канонический ODBC escape {CALL name(@a, @b)}
func procedureCall(name string, binds []params.Binding) (string, error) {
	args := make([]string, 0, len(binds))
	for _, b := range binds {
		if b.Direction == params.Out {
			return "", fmt.Errorf("%w: procedure %s parameter %s",
				executor.ErrOutputNotSupported, name, b.Name)
		}
		args = append(args, "@"+b.Name)
	}
	return fmt.Sprintf("{CALL %s(%s)}", name, strings.Join(args, ", ")), nil
}
