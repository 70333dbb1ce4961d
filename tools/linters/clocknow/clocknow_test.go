package clocknow_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/rezkam/todoreminder/tools/linters/clocknow"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), clocknow.Analyzer, "a", "clock")
}
