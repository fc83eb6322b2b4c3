package run

import (
	"fmt"
	"go/parser"
	"go/token"
	"path"
	"strconv"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// auditedFile is a parsed source file and the direct calls found in it.
type auditedFile struct {
	file     *dst.File
	findings []finding
}

// finding is one direct call to a global operation.
type finding struct {
	line, column int
	call         string // "<import path>.<func>", as keyed in the operation table
	pkgName      string // local name of the package in the file
	pkgPath      string
	funcName     string
	operation    string
	node         *dst.CallExpr
}

// auditSource parses src and finds every call to a function listed in operations.
//
// Detection is syntax-only: a call matches when its selector refers to an imported package by its local
// name. Blank and dot imports are never matched.
func auditSource(name string, src []byte, operations map[string]string) (*auditedFile, error) {
	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	file, err := dec.ParseFile(name, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	imports := importedPackages(file)
	audited := &auditedFile{file: file}

	dst.Inspect(file, func(node dst.Node) bool {
		call, ok := node.(*dst.CallExpr)
		if !ok {
			return true
		}

		sel, ok := call.Fun.(*dst.SelectorExpr)
		if !ok {
			return true
		}

		pkg, ok := sel.X.(*dst.Ident)
		if !ok {
			return true
		}

		pkgPath, ok := imports[pkg.Name]
		if !ok {
			return true
		}

		key := pkgPath + "." + sel.Sel.Name

		operation, ok := operations[key]
		if !ok {
			return true
		}

		pos := fset.Position(dec.Ast.Nodes[call].Pos())
		audited.findings = append(audited.findings, finding{
			line:      pos.Line,
			column:    pos.Column,
			call:      key,
			pkgName:   pkg.Name,
			pkgPath:   pkgPath,
			funcName:  sel.Sel.Name,
			operation: operation,
			node:      call,
		})

		return true
	})

	return audited, nil
}

// importedPackages maps each import's local name to its path.
func importedPackages(file *dst.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))

	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		local := path.Base(importPath)

		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}

			local = spec.Name.Name
		}

		imports[local] = importPath
	}

	return imports
}
