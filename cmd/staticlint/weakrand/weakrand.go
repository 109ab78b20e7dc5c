// Package weakrand содержит анализатор, запрещающий math/rand вне тестов.
// Короткие коды и соли паролей должны браться только из crypto/rand.
package weakrand

import (
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

var forbidden = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

// Analyzer сообщает об импорте math/rand в нетестовых файлах.
var Analyzer = &analysis.Analyzer{
	Name: "weakrand",
	Doc:  "запрещает импорт math/rand вне _test.go файлов",
	Run:  run,
}

// NewAnalyzer возвращает анализатор weakrand.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		name := pass.Fset.File(file.Pos()).Name()
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			if forbidden[path] {
				pass.Reportf(imp.Pos(), "импорт %s запрещён, используйте crypto/rand", path)
			}
		}
	}
	return nil, nil
}
