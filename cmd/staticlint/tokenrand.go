package main

import (
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// TokenRandAnalyzer запрещает math/rand в пакетах генерации токенов:
// токены должны читаться из crypto/rand.
var TokenRandAnalyzer = &analysis.Analyzer{
	Name: "tokenrand",
	Doc:  "reports math/rand imports in token generator packages",
	Run:  runTokenRand,
}

var weakRandPaths = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

func runTokenRand(pass *analysis.Pass) (interface{}, error) {
	path := pass.Pkg.Path()
	if path != "token" && !strings.HasSuffix(path, "/token") {
		return nil, nil
	}
	for _, file := range pass.Files {
		for _, imp := range file.Imports {
			importPath, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			if weakRandPaths[importPath] {
				pass.Reportf(imp.Pos(), "token package must not import %s, use crypto/rand", importPath)
			}
		}
	}
	return nil, nil
}
