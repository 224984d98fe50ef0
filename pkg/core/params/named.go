package params

import (
	"sort"
	"strings"
)

// OutPrefix - маркер выходного параметра в именованной карте аргументов:
// ключ вида "OUT@name" объявляет параметр направления Out
const OutPrefix = "OUT@"

// AsBindings конвертирует карту имя->значение в привязки параметров.
//
// Ключ с префиксом OUT@ дает выходную привязку: маркер отбрасывается,
// а ожидаемый тип берется из значения-строки до первого подчеркивания
// ("Int_result" -> TypeTag "Int"). Прочие ключи привязываются напрямую,
// сигил @ при его наличии отбрасывается.
// Порядок привязок детерминирован: ключи сортируются.
func AsBindings(named map[string]any) []Binding {
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bindings := make([]Binding, 0, len(keys))
	for _, key := range keys {
		value := named[key]

		if strings.HasPrefix(key, OutPrefix) {
			name := key[len(OutPrefix):]
			bindings = append(bindings, Binding{
				Name:      name,
				Value:     value,
				Direction: Out,
				TypeTag:   parseTypeTag(value),
			})
			continue
		}

		bindings = append(bindings, Binding{
			Name:  strings.TrimPrefix(key, "@"),
			Value: value,
		})
	}
	return bindings
}

// parseTypeTag извлекает тег типа из объявленного значения выходного
// параметра: префикс строки до первого подчеркивания
func parseTypeTag(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if i := strings.Index(s, "_"); i >= 0 {
		return s[:i]
	}
	return s
}
