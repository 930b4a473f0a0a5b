// Package flakes implements the general syntax and usage checker: syntax
// errors, undefined names, unused imports and redefinitions of unused names.
// It knows nothing about contract policy; that lives in checkers/contract.
package flakes

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Endogen/xian-linter/checkers"
	"github.com/Endogen/xian-linter/checkers/pyast"
	"github.com/Endogen/xian-linter/lint"
)

type Checker struct{}

func New() *Checker { return &Checker{} }

func (*Checker) Name() string { return "flakes" }

// Check runs the usage analysis. Malformed source never yields an error:
// an unparsable input produces a single location-less finding instead.
func (c *Checker) Check(ctx context.Context, src lint.SourceText) ([]checkers.Finding, error) {
	content := []byte(src.Content)

	tree, err := pyast.Parse(ctx, content)
	if err != nil {
		return []checkers.Finding{{Message: fmt.Sprintf("unable to parse source: %v", err)}}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return []checkers.Finding{{Message: "unable to parse source: no syntax tree produced"}}, nil
	}

	a := &analysis{content: content}
	a.syntaxErrors(root)

	module := newScope(nil)
	a.collect(root, module)
	a.resolve(root, module)
	a.unusedImports(module)

	return a.findings, nil
}

type bindKind int

const (
	bindImport bindKind = iota
	bindAssign
	bindFunction
	bindParam
)

type binding struct {
	name   string
	kind   bindKind
	line   int
	column int
	used   bool
}

type scope struct {
	parent *scope
	names  map[string]*binding
	order  []*binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]*binding{}}
}

func (s *scope) lookup(name string) *binding {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.names[name]; ok {
			return b
		}
	}
	return nil
}

type analysis struct {
	content  []byte
	findings []checkers.Finding
}

func (a *analysis) report(n *sitter.Node, format string, args ...interface{}) {
	a.findings = append(a.findings, checkers.Finding{
		Message: fmt.Sprintf(format, args...),
		Line:    pyast.Line(n),
		Column:  pyast.Column(n),
	})
}

// syntaxErrors reports ERROR and missing nodes. Children of an ERROR node are
// not descended into, so one broken region yields one finding.
func (a *analysis) syntaxErrors(root *sitter.Node) {
	pyast.Walk(root, func(n *sitter.Node) bool {
		if n.IsMissing() {
			a.report(n, "invalid syntax: missing %s", n.Type())
			return false
		}
		if n.Type() == "ERROR" {
			a.report(n, "invalid syntax")
			return false
		}
		return true
	})
}

func (a *analysis) bind(sc *scope, n *sitter.Node, kind bindKind) {
	name := n.Content(a.content)
	if prev, ok := sc.names[name]; ok && !prev.used && (prev.kind == bindImport || prev.kind == bindFunction) {
		a.report(n, "redefinition of unused '%s' from line %d", name, prev.line)
	}
	b := &binding{name: name, kind: kind, line: pyast.Line(n), column: pyast.Column(n)}
	sc.names[name] = b
	sc.order = append(sc.order, b)
}

// collect gathers the bindings of one scope without descending into nested
// function or lambda scopes; those are collected when resolve enters them.
// Scanning the whole scope before resolving makes forward references legal,
// matching module-level semantics of the dialect.
func (a *analysis) collect(n *sitter.Node, sc *scope) {
	switch n.Type() {
	case "function_definition":
		if name := n.ChildByFieldName("name"); name != nil {
			a.bind(sc, name, bindFunction)
		}
		return
	case "class_definition":
		if name := n.ChildByFieldName("name"); name != nil {
			a.bind(sc, name, bindAssign)
		}
		return
	case "lambda":
		return
	case "import_statement":
		a.collectImport(n, sc)
		return
	case "import_from_statement":
		a.collectImportFrom(n, sc)
		return
	case "assignment":
		if left := n.ChildByFieldName("left"); left != nil {
			a.bindTargets(left, sc)
		}
	case "for_statement", "for_in_clause":
		if left := n.ChildByFieldName("left"); left != nil {
			a.bindTargets(left, sc)
		}
	case "as_pattern":
		if alias := n.ChildByFieldName("alias"); alias != nil {
			a.bindTargets(alias, sc)
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		a.collect(n.Child(i), sc)
	}
}

func (a *analysis) bindTargets(n *sitter.Node, sc *scope) {
	switch n.Type() {
	case "identifier", "as_pattern_target":
		if n.Type() == "as_pattern_target" {
			for i := 0; i < int(n.ChildCount()); i++ {
				a.bindTargets(n.Child(i), sc)
			}
			return
		}
		a.bind(sc, n, bindAssign)
	case "pattern_list", "tuple_pattern", "list_pattern", "parenthesized_expression":
		for i := 0; i < int(n.ChildCount()); i++ {
			a.bindTargets(n.Child(i), sc)
		}
	case "subscript", "attribute":
		// target stores into an existing object, binds nothing
	}
}

// collectImport binds names introduced by "import x" and "import x as y".
func (a *analysis) collectImport(n *sitter.Node, sc *scope) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "dotted_name":
			a.bindDotted(child, sc)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				a.bind(sc, alias, bindImport)
			}
		}
	}
}

// collectImportFrom binds names introduced by "from x import y [as z]".
func (a *analysis) collectImportFrom(n *sitter.Node, sc *scope) {
	module := n.ChildByFieldName("module_name")
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			a.bindDotted(child, sc)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				a.bind(sc, alias, bindImport)
			}
		}
	}
}

// bindDotted binds the first segment of a dotted name ("a.b.c" binds "a").
func (a *analysis) bindDotted(n *sitter.Node, sc *scope) {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == "identifier" {
			a.bind(sc, child, bindImport)
			return
		}
	}
}

// resolve walks expressions and reports loads of names that are neither bound
// in the scope chain nor known builtins of the dialect runtime.
func (a *analysis) resolve(n *sitter.Node, sc *scope) {
	switch n.Type() {
	case "identifier":
		a.load(n, sc)
		return
	case "attribute":
		if obj := n.ChildByFieldName("object"); obj != nil {
			a.resolve(obj, sc)
		}
		return
	case "keyword_argument":
		if val := n.ChildByFieldName("value"); val != nil {
			a.resolve(val, sc)
		}
		return
	case "import_statement", "import_from_statement", "future_import_statement":
		return
	case "ERROR":
		return
	case "function_definition":
		a.resolveFunction(n, sc)
		return
	case "lambda":
		a.resolveLambda(n, sc)
		return
	case "assignment":
		if typ := n.ChildByFieldName("type"); typ != nil {
			a.resolve(typ, sc)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			a.resolve(right, sc)
		}
		if left := n.ChildByFieldName("left"); left != nil {
			a.resolveStore(left, sc)
		}
		return
	case "as_pattern":
		if n.ChildCount() > 0 {
			a.resolve(n.Child(0), sc)
		}
		return
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		a.resolve(n.Child(i), sc)
	}
}

// resolveStore visits assignment targets: plain identifiers bind and load
// nothing, but subscript and attribute targets load their base object.
func (a *analysis) resolveStore(n *sitter.Node, sc *scope) {
	switch n.Type() {
	case "identifier":
	case "pattern_list", "tuple_pattern", "list_pattern", "parenthesized_expression":
		for i := 0; i < int(n.ChildCount()); i++ {
			a.resolveStore(n.Child(i), sc)
		}
	case "subscript":
		if val := n.ChildByFieldName("value"); val != nil {
			a.resolve(val, sc)
		}
		if sub := n.ChildByFieldName("subscript"); sub != nil {
			a.resolve(sub, sc)
		}
	case "attribute":
		if obj := n.ChildByFieldName("object"); obj != nil {
			a.resolve(obj, sc)
		}
	default:
		a.resolve(n, sc)
	}
}

// resolveFunction evaluates defaults and annotations in the enclosing scope,
// then analyzes the body in a fresh scope seeded with the parameters.
func (a *analysis) resolveFunction(n *sitter.Node, outer *scope) {
	inner := newScope(outer)

	if params := n.ChildByFieldName("parameters"); params != nil {
		a.bindParameters(params, inner, outer)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		a.resolve(ret, outer)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		a.collect(body, inner)
		a.resolve(body, inner)
	}
}

func (a *analysis) resolveLambda(n *sitter.Node, outer *scope) {
	inner := newScope(outer)

	if params := n.ChildByFieldName("parameters"); params != nil {
		a.bindParameters(params, inner, outer)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		a.resolve(body, inner)
	}
}

// bindParameters binds parameter names into inner, resolving default values
// and annotations against outer.
func (a *analysis) bindParameters(params *sitter.Node, inner, outer *scope) {
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		switch p.Type() {
		case "identifier":
			a.bind(inner, p, bindParam)
		case "typed_parameter":
			if p.ChildCount() > 0 && p.Child(0).Type() == "identifier" {
				a.bind(inner, p.Child(0), bindParam)
			}
			if typ := p.ChildByFieldName("type"); typ != nil {
				a.resolve(typ, outer)
			}
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				a.bind(inner, name, bindParam)
			}
			if typ := p.ChildByFieldName("type"); typ != nil {
				a.resolve(typ, outer)
			}
			if val := p.ChildByFieldName("value"); val != nil {
				a.resolve(val, outer)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			for j := 0; j < int(p.ChildCount()); j++ {
				if p.Child(j).Type() == "identifier" {
					a.bind(inner, p.Child(j), bindParam)
				}
			}
		}
	}
}

func (a *analysis) load(n *sitter.Node, sc *scope) {
	name := n.Content(a.content)
	if b := sc.lookup(name); b != nil {
		b.used = true
		return
	}
	if _, ok := builtinNames[name]; ok {
		return
	}
	a.report(n, "undefined name '%s'", name)
}

func (a *analysis) unusedImports(module *scope) {
	for _, b := range module.order {
		if b.kind == bindImport && !b.used && module.names[b.name] == b {
			a.findings = append(a.findings, checkers.Finding{
				Message: fmt.Sprintf("'%s' imported but unused", b.name),
				Line:    b.line,
				Column:  b.column,
			})
		}
	}
}
