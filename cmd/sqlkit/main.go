// sqlkit - утилита командной строки для выполнения SQL команд,
// снятия снимков данных и их сравнения.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
	"github.com/Cruisoring/sqlkit/pkg/core/scripts"
	"github.com/Cruisoring/sqlkit/pkg/delta"
	"github.com/Cruisoring/sqlkit/pkg/executor"
	"github.com/Cruisoring/sqlkit/pkg/resultlog"
	"github.com/Cruisoring/sqlkit/pkg/settings"
	"github.com/Cruisoring/sqlkit/pkg/snapshot"
	"github.com/Cruisoring/sqlkit/pkg/xlsx"

	_ "github.com/Cruisoring/sqlkit/pkg/executor/drivers/mssql"
	_ "github.com/Cruisoring/sqlkit/pkg/executor/drivers/mysql"
	_ "github.com/Cruisoring/sqlkit/pkg/executor/drivers/postgres"
	_ "github.com/Cruisoring/sqlkit/pkg/executor/drivers/sqlite"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	flags := ParseFlags()

	if *flags.Version {
		fmt.Printf("sqlkit v%s\n", version)
		return
	}
	if *flags.Help {
		PrintHelp()
		return
	}

	// Сравнение снимков не требует подключения к базе
	if *flags.Diff {
		if err := runDiff(flag.Args(), *flags.Keys); err != nil {
			fatal("Diff failed: %v", err)
		}
		return
	}

	provider, err := buildProvider(flags)
	if err != nil {
		fatal("Failed to load settings: %v", err)
	}
	e, err := buildExecutor(ctx, provider)
	if err != nil {
		fatal("Failed to build executor: %v", err)
	}

	args := parseArgs(flag.Args())

	started := time.Now()
	var affected int64
	var cmdErr error
	switch {
	case *flags.Query != "":
		affected, cmdErr = runQuery(ctx, e, *flags.Query, args, *flags.Output, *flags.Sheet)
	case *flags.Exec != "":
		affected, cmdErr = runExec(ctx, e, *flags.Exec, args)
	case *flags.Scalar != "":
		cmdErr = runScalar(ctx, e, *flags.Scalar, args)
	case *flags.Snapshot != "":
		affected, cmdErr = runSnapshot(ctx, e, *flags.Snapshot, args, *flags.Output)
	default:
		PrintHelp()
		os.Exit(1)
	}

	publishResult(ctx, provider, started, affected, cmdErr)

	if cmdErr != nil {
		fatal("Command failed: %v", cmdErr)
	}
}

// buildProvider собирает цепочку настроек: флаги, yaml-файл, окружение
func buildProvider(flags *Flags) (settings.Provider, error) {
	var providers []settings.Provider

	if *flags.DSN != "" {
		providers = append(providers, settings.Map{settings.KeyConnectionString: *flags.DSN})
	}
	if *flags.Scripts != "" {
		providers = append(providers, settings.Map{settings.KeyScriptsDir: *flags.Scripts})
	}
	if *flags.Config != "" {
		cfg, err := settings.LoadFile(*flags.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		providers = append(providers, cfg)
	}
	providers = append(providers, settings.Env{Prefix: "SQLKIT_"})

	return settings.Chain(providers), nil
}

// buildExecutor собирает исполнитель с источниками скриптов из настроек
func buildExecutor(ctx context.Context, provider settings.Provider) (*executor.Executor, error) {
	sources, err := scriptSources(ctx, provider)
	if err != nil {
		return nil, err
	}
	return executor.New(provider, scripts.NewResolver(sources...)), nil
}

// scriptSources строит источники файлов скриптов: локальный каталог
// и, при заданном бакете, S3
func scriptSources(ctx context.Context, provider settings.Provider) ([]scripts.Source, error) {
	var sources []scripts.Source

	if dir, err := provider.Get(settings.KeyScriptsDir); err == nil && dir != "" {
		sources = append(sources, scripts.DirSource{Dir: dir})
	}

	bucket, err := provider.Get(settings.KeyScriptsS3Bucket)
	if err != nil || bucket == "" {
		return sources, nil
	}

	prefix, _ := provider.Get(settings.KeyScriptsS3Prefix)
	var opts []scripts.S3Option
	if region, err := provider.Get(settings.KeyScriptsS3Region); err == nil && region != "" {
		opts = append(opts, scripts.WithRegion(region))
	}
	if endpoint, err := provider.Get(settings.KeyScriptsS3Endpoint); err == nil && endpoint != "" {
		opts = append(opts, scripts.WithEndpoint(endpoint))
	}

	s3src, err := scripts.NewS3Source(ctx, bucket, prefix, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 script source: %w", err)
	}
	return append(sources, s3src), nil
}

// publishResult отправляет итог выполнения в Redis, если он настроен
func publishResult(ctx context.Context, provider settings.Provider, started time.Time, affected int64, cmdErr error) {
	p := resultlog.FromSettings(provider)
	if p == nil {
		return
	}
	defer p.Close()

	if err := p.Publish(ctx, started, time.Now(), affected, cmdErr); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to publish execution result: %v\n", err)
	}
}

func runQuery(ctx context.Context, e *executor.Executor, command string, args []any, output, sheet string) (int64, error) {
	rows, err := e.Records(ctx, nil, command, args...)
	if err != nil {
		return 0, err
	}

	switch {
	case strings.HasSuffix(output, ".xlsx"):
		if err := xlsx.ToXLSX(rows, output, sheet); err != nil {
			return 0, err
		}
		fmt.Printf("✓ Saved %d rows to %s\n", len(rows), output)
	case output != "":
		if err := snapshot.Write(output, rows, snapshot.Options{}); err != nil {
			return 0, err
		}
		fmt.Printf("✓ Saved %d rows to %s\n", len(rows), output)
	default:
		printRows(rows)
	}
	return int64(len(rows)), nil
}

func runExec(ctx context.Context, e *executor.Executor, command string, args []any) (int64, error) {
	affected, err := e.NonQuery(ctx, nil, command, args...)
	if err != nil {
		return 0, err
	}
	fmt.Printf("✓ Done, %d rows affected\n", affected)
	return affected, nil
}

func runScalar(ctx context.Context, e *executor.Executor, command string, args []any) error {
	v, err := e.Scalar(ctx, nil, command, args...)
	if err != nil {
		return err
	}
	fmt.Println(v.Text())
	return nil
}

func runSnapshot(ctx context.Context, e *executor.Executor, command string, args []any, output string) (int64, error) {
	if output == "" {
		output = "result.snap"
	}
	rows, err := e.Records(ctx, nil, command, args...)
	if err != nil {
		return 0, err
	}
	if err := snapshot.Write(output, rows, snapshot.Options{}); err != nil {
		return 0, err
	}
	fmt.Printf("✓ Saved %d rows to %s\n", len(rows), output)
	return int64(len(rows)), nil
}

// runDiff сравнивает два снимка и печатает отчет о расхождениях
func runDiff(files []string, keys string) error {
	if len(files) != 2 {
		return fmt.Errorf("diff requires exactly two snapshot files, got %d", len(files))
	}

	left, err := snapshot.Read(files[0], snapshot.Options{})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", files[0], err)
	}
	right, err := snapshot.Read(files[1], snapshot.Options{})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", files[1], err)
	}

	report, err := delta.NewEngine().DiffCollections(left, right, splitKeys(keys)...)
	if err != nil {
		return err
	}

	if report.Empty() {
		fmt.Println("✓ No differences found")
		return nil
	}
	fmt.Println(report.Format())
	os.Exit(2)
	return nil
}

// printRows печатает записи в виде простой таблицы
func printRows(rows record.ResultSet) {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}

	columns := rows[0].Columns()
	fmt.Println(strings.Join(columns, "\t"))

	for _, rec := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := rec.Get(col); ok {
				cells[i] = v.Text()
			}
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Printf("(%d rows)\n", len(rows))
}

// fatal печатает ошибку и завершает процесс
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
