// Package clocknow provides a linter that reports time.Now() calls outside the
// clock package. Code that stamps or compares todo times must read an injected
// clock.Clock so tests can freeze and advance it.
package clocknow

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports direct time.Now() calls.
var Analyzer = &analysis.Analyzer{
	Name: "clocknow",
	Doc:  "reports time.Now() outside the clock package; use an injected clock.Clock",
	Run:  run,
}

// exemptPackage is the only package allowed to read the wall clock.
const exemptPackage = "clock"

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() == exemptPackage {
		return nil, nil
	}

	for _, file := range pass.Files {
		suppressed := nolintLines(pass, file)

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isTimeNow(pass, call) {
				return true
			}

			line := pass.Fset.Position(call.Pos()).Line
			if suppressed[line] || suppressed[line-1] {
				return true
			}

			pass.Reportf(call.Pos(), "time.Now() bypasses clock.Clock; inject a clock instead")
			return true
		})
	}

	return nil, nil
}

// isTimeNow resolves the callee through type info, so renamed imports of
// "time" are caught and unrelated Now functions are not.
func isTimeNow(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Now" {
		return false
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "time"
}

// nolintLines returns the lines carrying //nolint or //nolint:clocknow.
// A nolint naming only other linters does not count.
func nolintLines(pass *analysis.Pass, file *ast.File) map[int]bool {
	lines := make(map[int]bool)
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
			directive, ok := strings.CutPrefix(text, "nolint")
			if !ok {
				continue
			}
			if directive == "" || strings.HasPrefix(directive, " ") {
				lines[pass.Fset.Position(c.Pos()).Line] = true
				continue
			}
			names, _, _ := strings.Cut(strings.TrimPrefix(directive, ":"), " ")
			for name := range strings.SplitSeq(names, ",") {
				if name == Analyzer.Name {
					lines[pass.Fset.Position(c.Pos()).Line] = true
				}
			}
		}
	}
	return lines
}
