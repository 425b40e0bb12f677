// Package main реализует команду «staticlint» на базе multichecker.
// Инструмент агрегирует стандартные анализаторы golang.org/x/tools,
// правила staticcheck из honnef.co/go/tools и собственные проверки проекта.
//
// Использование:
//
//	go install ./cmd/staticlint
//	staticlint ./...
//
// Включённые анализаторы:
//   - printf, shadow, structtag: стандартные проверки строк формата,
//     затенения переменных и тегов структур.
//   - nilness, unusedresult: возможные разыменования nil и отброшенные
//     результаты вызовов.
//   - exitmain: запрещает прямой вызов os.Exit в функции main пакета main.
//   - tokenrand: запрещает math/rand в пакетах .../token.
//   - SA*: анализаторы staticcheck.
//   - S1000 из simple.
package main

import (
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
)

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		unusedresult.Analyzer,
		ExitMainAnalyzer,
		TokenRandAnalyzer,
	}

	for _, la := range staticcheck.Analyzers {
		if strings.HasPrefix(la.Analyzer.Name, "SA") {
			list = append(list, la.Analyzer)
		}
	}
	for _, la := range simple.Analyzers {
		if la.Analyzer.Name == "S1000" {
			list = append(list, la.Analyzer)
		}
	}
	return list
}

func main() {
	multichecker.Main(analyzers()...)
}
