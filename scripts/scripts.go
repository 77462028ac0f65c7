// Package scripts embeds the built-in rules written in Risor. A Script
// check runs one of them when configured with the builtin property:
//
//	checks:
//	  - type: Script
//	    properties:
//	      builtin: string_literal_equality
//
// Rules see the same host functions as user scripts.
package scripts

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// FS holds the rule sources under rules/.
//
//go:embed rules/*.risor
var FS embed.FS

const (
	ruleDir = "rules"
	ruleExt = ".risor"
)

// Rules returns the rule directory as the root of a file system, which is
// how the Script runtime loads them.
func Rules() fs.FS {
	sub, err := fs.Sub(FS, ruleDir)
	if err != nil {
		panic(err)
	}
	return sub
}

// File returns the file name of the named rule within Rules.
func File(name string) string { return name + ruleExt }

// Names lists the built-in rules, sorted.
func Names() []string {
	entries, err := fs.ReadDir(FS, ruleDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ruleExt); ok && !e.IsDir() {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is a built-in rule.
func Has(name string) bool {
	_, err := fs.Stat(FS, path.Join(ruleDir, File(name)))
	return err == nil
}
