package main

import (
	"flag"
	"strconv"
	"strings"
)

// Flags содержит все флаги командной строки
type Flags struct {
	// Общие
	Config  *string
	DSN     *string
	Scripts *string
	Help    *bool
	Version *bool

	// Команды
	Query    *string
	Exec     *string
	Scalar   *string
	Snapshot *string
	Diff     *bool

	// Параметры вывода
	Output *string
	Sheet  *string
	Keys   *string
}

// ParseFlags разбирает флаги командной строки
func ParseFlags() *Flags {
	flags := &Flags{
		Config:  flag.String("config", "", "Path to YAML settings file"),
		DSN:     flag.String("dsn", "", "Connection string (overrides settings)"),
		Scripts: flag.String("scripts", "", "Directory with .sql script files"),
		Help:    flag.Bool("help", false, "Show help"),
		Version: flag.Bool("version", false, "Show version"),

		Query:    flag.String("query", "", "Run a query (SQL text or .sql file) and print rows"),
		Exec:     flag.String("exec", "", "Run a command (SQL text or .sql file) without result"),
		Scalar:   flag.String("scalar", "", "Run a query and print the first value"),
		Snapshot: flag.String("snapshot", "", "Run a query and save rows to a snapshot file"),
		Diff:     flag.Bool("diff", false, "Compare two snapshot files (pass them as arguments)"),

		Output: flag.String("output", "", "Output file (.snap or .xlsx)"),
		Sheet:  flag.String("sheet", "Data", "Sheet name for XLSX output"),
		Keys:   flag.String("keys", "", "Comma-separated key columns for --diff"),
	}

	flag.Parse()
	return flags
}

// parseArgs приводит позиционные аргументы к типизированным значениям
// параметров: целые, дробные, булевы и null распознаются по виду,
// остальное передается строкой
func parseArgs(raw []string) []any {
	if len(raw) == 0 {
		return nil
	}
	args := make([]any, len(raw))
	for i, s := range raw {
		args[i] = parseArg(s)
	}
	return args
}

func parseArg(s string) any {
	switch strings.ToLower(s) {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// splitKeys разбирает список ключевых колонок из флага --keys
func splitKeys(keys string) []string {
	if keys == "" {
		return nil
	}
	parts := strings.Split(keys, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
