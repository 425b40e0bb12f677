package main

import (
	"testing"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestExitMainAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), ExitMainAnalyzer, "exitmain")
}

func TestTokenRandAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), TokenRandAnalyzer,
		"example.com/shortener/token",
		"example.com/shortener/jitter",
	)
}

func TestAnalyzersAreValid(t *testing.T) {
	list := analyzers()
	if err := analysis.Validate(list); err != nil {
		t.Fatalf("invalid analyzer set: %v", err)
	}
}
