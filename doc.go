// Package checkwalk is the core of a Checkstyle-like static analyser for
// Java. It parses each source file into an abstract syntax tree, walks the
// tree once while dispatching nodes to every interested check, collects the
// reported violations in a stable order, and passes them through a chain
// of suppression filters.
//
// # Pipeline
//
// For every file, independently and in parallel:
//
//  1. Parse: decode the declared charset, parse with the tree-sitter Java
//     grammar and normalise the result into a [tree.Tree] whose node kinds
//     follow the Checkstyle token vocabulary (LITERAL_IF, SLIST, EXPR, ...).
//
//  2. Walk: a single pre-order traversal calls Visit and Leave on the
//     checks registered for each node kind. Checks report violations
//     through their [check.Context].
//
//  3. Filter: the [filter.Chain] drops suppressed violations. Filters see
//     the file's tree and comments but never alter a violation.
//
// # Usage
//
//	e, err := checkwalk.New(checkwalk.Config{
//		Checks: []checkwalk.ModuleConfig{
//			{Type: "LineLength", Properties: map[string]any{"max": 100}},
//			{Type: "FallThrough"},
//		},
//		Filters: []checkwalk.ModuleConfig{{Type: "SuppressionComment"}},
//	}, checkwalk.WithWorkers(4))
//	if err != nil { ... }
//	defer e.Close()
//
//	report, err := e.AnalyzeDirectory(ctx, "src/main/java")
//
// # Failures
//
// A file that does not parse fails with a [check.SyntaxError]; a check
// that panics or calls Context.Fail abandons its file with a
// [check.CheckError]; unreadable files and per-file timeouts surface as a
// [check.FileError]. All three stay inside the file's [FileResult] and the
// run continues. Configuration problems are reported together by [New] as
// a [check.ConfigError] before any file is touched.
//
// # Result cache
//
// [WithCache] keeps a SQLite database of files that produced no violations.
// A file is skipped while its content hash is unchanged. Any change to the
// configuration, or to a script loaded by a Script check, empties the
// cache.
package checkwalk
