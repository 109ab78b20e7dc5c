// Package main запускает multichecker.
//
// Он включает:
// - стандартные анализаторы go/analysis/passes (shadow, structtag, nilness,
//   fieldalignment, printf, httpresponse, lostcancel, unusedresult)
// - все SA-анализаторы staticcheck
// - S1000 из simple и U1000 из unused
// - публичный анализатор bodyclose
// - собственный анализатор weakrand (запрещает math/rand вне тестов)
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/Totarae/linkgate/cmd/staticlint/weakrand"
)

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		fieldalignment.Analyzer,
		printf.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		unusedresult.Analyzer,
	}

	// SA-анализаторы
	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			checks = append(checks, a.Analyzer)
		}
	}

	// не-SA:
	if a := findAnalyzer(simple.Analyzers, "S1000"); a != nil {
		checks = append(checks, a) // упрощения select
	}
	checks = append(checks, unused.Analyzer.Analyzer) // U1000, неиспользуемый код

	// публичный анализатор (не из staticcheck)
	checks = append(checks, bodyclose.Analyzer)

	// собственный анализатор
	return append(checks, weakrand.NewAnalyzer())
}

func findAnalyzer(set []*lint.Analyzer, name string) *analysis.Analyzer {
	for _, a := range set {
		if a.Analyzer.Name == name {
			return a.Analyzer
		}
	}
	return nil
}
