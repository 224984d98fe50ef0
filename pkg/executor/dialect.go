package executor

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Cruisoring/sqlkit/pkg/core/params"
	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// PlaceholderStyle определяет синтаксис плейсхолдеров драйвера
type PlaceholderStyle int

const (
	// PlaceholderQuestion - позиционные ? (sqlite, mysql, odbc)
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar - нумерованные $1..$N (postgres)
	PlaceholderDollar
	// PlaceholderNamed - именованные @name через sql.Named (mssql)
	PlaceholderNamed
)

// Dialect описывает особенности одного движка БД: имя драйвера
// database/sql, синтаксис плейсхолдеров, определение по строке
// подключения, синтаксис вызова процедур и таймауты
type Dialect struct {
	// Name - ключ диалекта в реестре
	Name string

	// Driver - имя драйвера для sql.Open
	Driver string

	// Placeholder - синтаксис плейсхолдеров
	Placeholder PlaceholderStyle

	// SupportsOutput - поддержка выходных параметров процедур
	SupportsOutput bool

	// Detect распознает строку подключения этого движка
	Detect func(dsn string) bool

	// ProcedureCall строит текст вызова хранимой процедуры
	ProcedureCall func(name string, binds []params.Binding) (string, error)

	// WithTimeout дополняет строку подключения таймаутом
	WithTimeout func(dsn string, timeout time.Duration) string
}

// Глобальный реестр диалектов: заполняется из init() пакетов-драйверов,
// порядок регистрации определяет порядок опроса Detect
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
	detectSeq  []*Dialect
)

// Register регистрирует диалект. Вызывается из init() пакета драйвера;
// повторная регистрация имени - ошибка программирования и паника.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()

	if _, exists := dialects[d.Name]; exists {
		panic(fmt.Sprintf("executor: dialect %q already registered", d.Name))
	}
	dialects[d.Name] = d
	detectSeq = append(detectSeq, d)
}

// ByName возвращает диалект по имени
func ByName(name string) (*Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()

	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("%w: dialect %q not registered", ErrUnknownDriver, name)
	}
	return d, nil
}

// DetectDialect подбирает диалект по строке подключения
func DetectDialect(dsn string) (*Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()

	for _, d := range detectSeq {
		if d.Detect != nil && d.Detect(dsn) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot detect dialect for connection string", ErrUnknownDriver)
}

// rebind переписывает плейсхолдеры @name под синтаксис диалекта и
// строит позиционные аргументы драйвера. Для выходных привязок
// назначения складываются в outs по имени параметра.
func rebind(text string, binds []params.Binding, style PlaceholderStyle, outs map[string]*any) (string, []any, error) {
	byName := make(map[string]params.Binding, len(binds))
	for _, b := range binds {
		byName[strings.ToLower(b.Name)] = b
	}

	switch style {
	case PlaceholderNamed:
		args := make([]any, 0, len(binds))
		for _, b := range binds {
			if b.Direction == params.Out {
				dest := new(any)
				outs[b.Name] = dest
				args = append(args, sql.Named(b.Name, sql.Out{Dest: dest}))
				continue
			}
			args = append(args, sql.Named(b.Name, driverValue(b.Value)))
		}
		return text, args, nil

	case PlaceholderDollar:
		numbers := make(map[string]int)
		var args []any
		var rebindErr error
		rewritten := params.TokenPattern.ReplaceAllStringFunc(text, func(token string) string {
			key := strings.ToLower(token[1:])
			b, ok := byName[key]
			if !ok {
				rebindErr = fmt.Errorf("executor: no binding for placeholder %s", token)
				return token
			}
			if b.Direction == params.Out {
				rebindErr = fmt.Errorf("%w: parameter %s", ErrOutputNotSupported, token)
				return token
			}
			n, seen := numbers[key]
			if !seen {
				args = append(args, driverValue(b.Value))
				n = len(args)
				numbers[key] = n
			}
			return fmt.Sprintf("$%d", n)
		})
		if rebindErr != nil {
			return "", nil, rebindErr
		}
		return rewritten, args, nil

	default: // PlaceholderQuestion
		var args []any
		var rebindErr error
		rewritten := params.TokenPattern.ReplaceAllStringFunc(text, func(token string) string {
			key := strings.ToLower(token[1:])
			b, ok := byName[key]
			if !ok {
				rebindErr = fmt.Errorf("executor: no binding for placeholder %s", token)
				return token
			}
			if b.Direction == params.Out {
				rebindErr = fmt.Errorf("%w: parameter %s", ErrOutputNotSupported, token)
				return token
			}
			args = append(args, driverValue(b.Value))
			return "?"
		})
		if rebindErr != nil {
			return "", nil, rebindErr
		}
		return rewritten, args, nil
	}
}

// driverValue приводит значение привязки к виду, понятному драйверу
func driverValue(v any) any {
	if tv, ok := v.(record.Value); ok {
		return tv.Driver()
	}
	return v
}
