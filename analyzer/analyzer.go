// Package analyzer provides a vet-style analyzer that checks task
// computations for constructs that break the cooperative scheduling model.
package analyzer

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "aiotasks",
	Doc:      "Checks for common errors in task computations",
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

// awaitFuncs are the entry points that suspend the calling computation. A
// function calling any of them runs on the event loop.
var awaitFuncs = map[string]bool{
	"Await":       true,
	"Sleep":       true,
	"SleepValue":  true,
	"Wait":        true,
	"AsCompleted": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.FuncDecl)(nil), (*ast.FuncLit)(nil)}

	inspector.Preorder(nodeFilter, func(node ast.Node) {
		var body *ast.BlockStmt
		switch fn := node.(type) {
		case *ast.FuncDecl:
			body = fn.Body
		case *ast.FuncLit:
			body = fn.Body
		}

		if body == nil || !isTaskComputation(body) {
			return
		}

		walkOwnStatements(body, func(n ast.Node) {
			switch n := n.(type) {
			case *ast.CallExpr:
				if isPackageCall(n, "time", "Sleep") {
					pass.Reportf(n.Pos(), "time.Sleep blocks the whole event loop, use aio.Sleep in task computations")
				}

			case *ast.GoStmt:
				pass.Reportf(n.Pos(), "goroutines escape the cooperative scheduler, use aio.NewTask in task computations")
			}
		})
	})

	return nil, nil
}

// isTaskComputation reports whether the function body suspends through the
// aio package. Nested function literals are checked as computations of their
// own and do not count for the enclosing function.
func isTaskComputation(body *ast.BlockStmt) bool {
	found := false
	walkOwnStatements(body, func(n ast.Node) {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return
		}

		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}

		pkg, ok := sel.X.(*ast.Ident)
		if !ok {
			return
		}

		if pkg.Name == "aio" && awaitFuncs[sel.Sel.Name] {
			found = true
		}
	})

	return found
}

func walkOwnStatements(body *ast.BlockStmt, fn func(ast.Node)) {
	for _, stmt := range body.List {
		ast.Inspect(stmt, func(n ast.Node) bool {
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}

			fn(n)
			return true
		})
	}
}

func isPackageCall(call *ast.CallExpr, pkg, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}

	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}

	return ident.Name == pkg && sel.Sel.Name == name
}
