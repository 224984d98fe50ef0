package main

import "fmt"

// PrintHelp печатает справку по использованию
func PrintHelp() {
	fmt.Print(`sqlkit - SQL command runner, data snapshots and diffing

USAGE:
  sqlkit [flags] [args...]

CONNECTION:
  --config FILE       YAML settings file (connection_string, scripts_dir)
  --dsn STRING        Connection string, overrides settings
  --scripts DIR       Directory with .sql script files

  The connection string is detected automatically:
  postgres://..., ...@tcp(...)/..., sqlserver://..., DSN=..., file.db

COMMANDS (SQL is literal text or a .sql file name):
  --query SQL         Run a query and print rows
  --exec SQL          Run a command, print rows affected
  --scalar SQL        Run a query, print the first value
  --snapshot SQL      Run a query, save rows to a snapshot file
  --diff A B          Compare two snapshot files

OPTIONS:
  --output FILE       Output file for --query/--snapshot (.snap or .xlsx)
  --sheet NAME        Sheet name for XLSX output (default: Data)
  --keys a,b          Key columns for --diff (up to 4)
  --version           Show version
  --help              Show this help

ARGUMENTS:
  Positional args bind to @-placeholders in order of first appearance.
  Literals: integers, floats, true/false, null; anything else is text.

CONFIG KEYS (YAML file or SQLKIT_* environment):
  connection_string   Default connection string
  scripts_dir         Directory with .sql script files
  scripts_s3_bucket   S3 bucket with .sql scripts; tuned by
                      scripts_s3_prefix, scripts_s3_region, scripts_s3_endpoint
  resultlog_address   Redis host:port; each run publishes its result there,
                      tuned by resultlog_name, resultlog_ttl, resultlog_db,
                      resultlog_password

EXAMPLES:
  sqlkit --dsn app.db --query "SELECT * FROM users WHERE age > @age" 18
  sqlkit --dsn app.db --query users_report.sql --scripts ./sql --output report.xlsx
  sqlkit --dsn app.db --snapshot "SELECT * FROM orders" --output before.snap
  sqlkit --diff before.snap after.snap --keys id

ENVIRONMENT:
  SQLKIT_CONNECTION_STRING, SQLKIT_SCRIPTS_DIR
`)
}
