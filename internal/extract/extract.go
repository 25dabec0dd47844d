// Package extract finds godog step registrations in parsed Go source and
// projects them into per-category pattern lists.
package extract

import (
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alexbrand/stepexport/internal/log"
	"github.com/alexbrand/stepexport/internal/step"
)

// DefaultImports lists the import paths that mark a file as registering steps.
var DefaultImports = []string{"github.com/cucumber/godog"}

// registration methods on *godog.ScenarioContext
var stepMethods = map[string]step.Category{
	"Given": step.CategoryGiven,
	"When":  step.CategoryWhen,
	"Then":  step.CategoryThen,
	"Step":  "",
}

// Options controls how registrations are recognised.
type Options struct {
	// Imports lists import paths of step frameworks. A file must import one
	// of them to be scanned. Empty means DefaultImports.
	Imports []string
	// Logger receives debug output about skipped registrations.
	Logger *slog.Logger
}

func (o Options) imports() []string {
	if len(o.Imports) == 0 {
		return DefaultImports
	}
	return o.Imports
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return log.Discard()
	}
	return o.Logger
}

// Package is a set of parsed files that share one package scope.
type Package struct {
	Fset  *token.FileSet
	Files []*ast.File
}

// Scan returns every step registration in the package, in file order and
// then source order.
func Scan(pkg *Package, opts Options) []step.Definition {
	consts := collectConsts(pkg.Files)
	log := opts.logger()

	var defs []step.Definition
	for _, file := range pkg.Files {
		if !importsAny(file, opts.imports()) {
			continue
		}
		s := &fileScanner{
			fset:     pkg.Fset,
			file:     file,
			consts:   consts,
			regexpID: importName(file, "regexp"),
			log:      log,
		}
		defs = append(defs, s.scan()...)
	}
	return defs
}

// Extract returns the patterns registered under the category, in the order
// the registrations were discovered.
func Extract(mod *step.Module, c step.Category) []string {
	return mod.Patterns(c)
}

type fileScanner struct {
	fset     *token.FileSet
	file     *ast.File
	consts   map[string]ast.Expr
	regexpID string
	log      *slog.Logger
}

func (s *fileScanner) scan() []step.Definition {
	var defs []step.Definition
	for _, decl := range s.file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		var sections []section
		if ok && fn.Body != nil {
			sections = s.sections(fn.Body)
		}
		ast.Inspect(decl, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if def, ok := s.definition(call, sections); ok {
				defs = append(defs, def)
			}
			return true
		})
	}
	return defs
}

func (s *fileScanner) definition(call *ast.CallExpr, sections []section) (step.Definition, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || len(call.Args) != 2 {
		return step.Definition{}, false
	}
	cat, ok := stepMethods[sel.Sel.Name]
	if !ok {
		return step.Definition{}, false
	}

	pos := s.position(call.Pos())
	pattern, ok := s.resolve(call.Args[0])
	if !ok {
		s.log.Debug("skipping step registration with unresolvable pattern",
			"pos", pos, "expr", types.ExprString(call.Args[0]))
		return step.Definition{}, false
	}

	def := step.Definition{
		Pattern: pattern,
		Handler: types.ExprString(call.Args[1]),
		Pos:     pos,
	}
	if cat == "" {
		cat = sectionAt(sections, call.Pos())
	}
	if cat != "" {
		def.Markers = []step.Category{cat}
	}
	return def, true
}

func (s *fileScanner) position(p token.Pos) string {
	position := s.fset.Position(p)
	return filepath.Base(position.Filename) + ":" + strconv.Itoa(position.Line)
}

// resolve evaluates a pattern expression to its string value.
func (s *fileScanner) resolve(expr ast.Expr) (string, bool) {
	return resolveExpr(expr, s.consts, s.regexpID, 0)
}

func resolveExpr(expr ast.Expr, consts map[string]ast.Expr, regexpID string, depth int) (string, bool) {
	if depth > 32 {
		return "", false
	}
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.STRING {
			return "", false
		}
		v, err := strconv.Unquote(e.Value)
		if err != nil {
			return "", false
		}
		return v, true
	case *ast.ParenExpr:
		return resolveExpr(e.X, consts, regexpID, depth+1)
	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return "", false
		}
		x, ok := resolveExpr(e.X, consts, regexpID, depth+1)
		if !ok {
			return "", false
		}
		y, ok := resolveExpr(e.Y, consts, regexpID, depth+1)
		if !ok {
			return "", false
		}
		return x + y, true
	case *ast.Ident:
		v, ok := consts[e.Name]
		if !ok {
			return "", false
		}
		return resolveExpr(v, consts, regexpID, depth+1)
	case *ast.CallExpr:
		sel, ok := e.Fun.(*ast.SelectorExpr)
		if !ok || len(e.Args) != 1 || regexpID == "" {
			return "", false
		}
		pkg, ok := sel.X.(*ast.Ident)
		if !ok || pkg.Name != regexpID {
			return "", false
		}
		if sel.Sel.Name != "MustCompile" && sel.Sel.Name != "MustCompilePOSIX" {
			return "", false
		}
		return resolveExpr(e.Args[0], consts, regexpID, depth+1)
	}
	return "", false
}

// collectConsts gathers package-level constants that have an explicit value.
func collectConsts(files []*ast.File) map[string]ast.Expr {
	consts := make(map[string]ast.Expr)
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.CONST {
				continue
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok || len(vs.Values) != len(vs.Names) {
					continue
				}
				for i, name := range vs.Names {
					consts[name.Name] = vs.Values[i]
				}
			}
		}
	}
	return consts
}

func importsAny(file *ast.File, paths []string) bool {
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		for _, want := range paths {
			if p == want {
				return true
			}
		}
	}
	return false
}

// importName returns the local name the file uses for the import path, or
// "" if the file does not import it.
func importName(file *ast.File, path string) string {
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != path {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				return ""
			}
			return imp.Name.Name
		}
		return path[strings.LastIndex(path, "/")+1:]
	}
	return ""
}

// section is a header comment inside a function body such as "// Given steps".
// An empty category closes the previous section.
type section struct {
	pos token.Pos
	cat step.Category
}

// sections returns the section headers found in body, ordered by position.
func (s *fileScanner) sections(body *ast.BlockStmt) []section {
	var out []section
	for _, cg := range s.file.Comments {
		if cg.Pos() < body.Lbrace || cg.End() > body.Rbrace {
			continue
		}
		if len(cg.List) != 1 {
			continue
		}
		cat, ok := parseSection(cg.Text())
		if !ok {
			continue
		}
		out = append(out, section{pos: cg.Pos(), cat: cat})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	return out
}

// parseSection reports whether text is a section header and which category
// it opens. Headers start with a Gherkin keyword or mention "steps".
func parseSection(text string) (step.Category, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	first := strings.TrimRight(fields[0], ":-,")
	if cat, err := step.ParseCategory(first); err == nil && isKeyword(first) {
		return cat, true
	}
	for _, f := range fields {
		if strings.EqualFold(strings.TrimRight(f, ":-,."), "steps") {
			return "", true
		}
	}
	return "", false
}

func isKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "given", "when", "then":
		return true
	}
	return false
}

func sectionAt(sections []section, pos token.Pos) step.Category {
	var cat step.Category
	for _, sec := range sections {
		if sec.pos > pos {
			break
		}
		cat = sec.cat
	}
	return cat
}
