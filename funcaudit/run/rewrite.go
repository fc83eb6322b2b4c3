package run

import (
	"bytes"
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/dave/dst/dstutil"
	"github.com/toejough/impfunc"
)

// diff rewrites every finding to go through receiver and returns a unified diff against src.
// The file's tree is modified in place.
func (a *auditedFile) diff(name, src, receiver string) (string, error) {
	byNode := make(map[*dst.CallExpr]finding, len(a.findings))
	for _, found := range a.findings {
		byNode[found.node] = found
	}

	// Post-order, so nested findings are rewritten before the calls that contain them.
	dstutil.Apply(a.file, nil, func(c *dstutil.Cursor) bool {
		call, ok := c.Node().(*dst.CallExpr)
		if !ok {
			return true
		}

		if found, ok := byNode[call]; ok {
			c.Replace(routed(found, receiver))
		}

		return true
	})

	var buf bytes.Buffer

	err := decorator.Fprint(&buf, a.file)
	if err != nil {
		return "", fmt.Errorf("failed to print rewritten %s: %w", name, err)
	}

	return textdiff.Unified(name+" (current)", name+" (routed)", src, buf.String()), nil
}

// routesThroughCall reports whether any finding is rewritten to a generic Call.
func (a *auditedFile) routesThroughCall() bool {
	for _, found := range a.findings {
		if _, ok := methods[found.operation]; !ok {
			return true
		}
	}

	return false
}

// routed builds the call that replaces a finding.
//
// Operations with a dedicated Functions method call that method. Output calls from fmt are wrapped in the
// matching Sprint variant so the method gets a single string. Everything else goes through Call, whose
// (any, error) results do not fit where the original call was used as a single value.
func routed(found finding, receiver string) *dst.CallExpr {
	call := found.node
	args := call.Args
	ellipsis := call.Ellipsis

	method, ok := methods[found.operation]
	if !ok {
		method = "Call"
		args = append([]dst.Expr{&dst.BasicLit{Kind: token.STRING, Value: strconv.Quote(found.operation)}}, args...)
	}

	if (method == "Echo" || method == "Print") && found.pkgPath == "fmt" && strings.HasPrefix(found.funcName, "Print") {
		wrapper := "S" + strings.ToLower(found.funcName[:1]) + found.funcName[1:]
		args = []dst.Expr{&dst.CallExpr{
			Fun:      &dst.SelectorExpr{X: dst.NewIdent(found.pkgName), Sel: dst.NewIdent(wrapper)},
			Args:     args,
			Ellipsis: ellipsis,
		}}
		ellipsis = false
	}

	return &dst.CallExpr{
		Fun:      &dst.SelectorExpr{X: dst.NewIdent(receiver), Sel: dst.NewIdent(method)},
		Args:     args,
		Ellipsis: ellipsis,
		Decs:     call.Decs,
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // lookup table, effectively a constant
	methods = map[string]string{
		impfunc.FuncDie:         "Die",
		impfunc.FuncEcho:        "Echo",
		impfunc.FuncExit:        "Exit",
		impfunc.FuncInclude:     "Include",
		impfunc.FuncIncludeOnce: "IncludeOnce",
		impfunc.FuncPrint:       "Print",
		impfunc.FuncRequire:     "Require",
		impfunc.FuncRequireOnce: "RequireOnce",
	}
)
