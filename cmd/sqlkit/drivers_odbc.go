//go:build cgo || windows

package main

import (
	_ "github.com/Cruisoring/sqlkit/pkg/executor/drivers/odbc"
)
