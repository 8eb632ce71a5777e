package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/nmicheli/concord/pkg/models"
	"github.com/nmicheli/concord/pkg/parser"
)

// PythonExtractor is the grammar-based front end. It walks the
// tree-sitter syntax tree and emits one Definition per function node
// (methods and nested functions included), one Call per call
// expression anywhere in the file, and one Import per imported name.
type PythonExtractor struct{}

// NewPython creates the Python extractor.
func NewPython() *PythonExtractor {
	return &PythonExtractor{}
}

// Extract implements Extractor.
func (e *PythonExtractor) Extract(ctx context.Context, info models.FileInfo) ([]models.Node, error) {
	source, err := readSource(info.Path)
	if err != nil {
		return nil, err
	}

	p := parser.New()
	defer p.Close()

	result, err := p.Parse(ctx, source, models.LangPython, info.Path)
	if err != nil {
		return nil, err
	}

	w := &pyWalker{file: info.Path, source: source}
	parser.Walk(result.Tree.RootNode(), source, w.visit)
	return w.nodes, nil
}

// pyWalker carries traversal state: the enclosing class chain and the
// stack of open definitions. Calls are attributed to the body-call
// list of the innermost definition lexically containing them.
type pyWalker struct {
	file    string
	source  []byte
	nodes   []models.Node
	classes []string
	defs    []int // indexes into nodes of open definitions
}

// visit is a parser.NodeVisitor. Node types with walker state of
// their own (class stack, definition stack) drive the descent
// themselves and return false; everything else lets Walk recurse.
func (w *pyWalker) visit(node *sitter.Node, _ []byte) bool {
	switch node.Type() {
	case "class_definition":
		name := parser.GetNodeText(node.ChildByFieldName("name"), w.source)
		w.classes = append(w.classes, name)
		w.walkChildren(node)
		w.classes = w.classes[:len(w.classes)-1]
		return false

	case "function_definition":
		w.enterDefinition(node)
		return false

	case "call":
		w.emitCall(node)
		// Descend: arguments may contain further calls.
		w.walkChildren(node)
		return false

	case "import_statement":
		w.emitImports(node, int(node.StartPoint().Row)+1)
		return false

	case "import_from_statement":
		w.emitImportFrom(node, int(node.StartPoint().Row)+1)
		return false
	}

	return true
}

func (w *pyWalker) walkChildren(node *sitter.Node) {
	for i := range int(node.ChildCount()) {
		parser.Walk(node.Child(i), w.source, w.visit)
	}
}

func (w *pyWalker) enterDefinition(node *sitter.Node) {
	name := parser.GetNodeText(node.ChildByFieldName("name"), w.source)

	def := models.Node{
		Kind:     models.KindDefinition,
		Name:     name,
		Line:     int(node.StartPoint().Row) + 1,
		File:     w.file,
		Language: models.LangPython,
		Params:   w.paramNames(node.ChildByFieldName("parameters")),
	}
	if len(w.classes) > 0 {
		def.Class = w.classes[len(w.classes)-1]
	}

	body := node.ChildByFieldName("body")
	def.Docstring = w.docstring(body)

	w.nodes = append(w.nodes, def)
	w.defs = append(w.defs, len(w.nodes)-1)
	w.walkChildren(node)
	w.defs = w.defs[:len(w.defs)-1]
}

// paramNames captures formal parameter names in declaration order.
// Policy (consistent, matching what the Python front end normally
// omits): a leading self/cls receiver is dropped only for methods,
// i.e. definitions directly inside a class body. Splat parameters
// keep their bare name without stars.
func (w *pyWalker) paramNames(params *sitter.Node) []string {
	if params == nil {
		return nil
	}

	var names []string
	for i := range int(params.NamedChildCount()) {
		child := params.NamedChild(i)
		name := w.paramName(child)
		if name == "" {
			continue
		}
		names = append(names, name)
	}

	if len(w.classes) > 0 && len(names) > 0 && (names[0] == "self" || names[0] == "cls") {
		names = names[1:]
	}
	return names
}

func (w *pyWalker) paramName(node *sitter.Node) string {
	switch node.Type() {
	case "identifier":
		return parser.GetNodeText(node, w.source)
	case "default_parameter", "typed_default_parameter":
		return parser.GetNodeText(node.ChildByFieldName("name"), w.source)
	case "typed_parameter":
		for i := range int(node.NamedChildCount()) {
			if inner := w.paramName(node.NamedChild(i)); inner != "" {
				return inner
			}
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		if node.NamedChildCount() > 0 {
			return parser.GetNodeText(node.NamedChild(0), w.source)
		}
	}
	// keyword_separator (*) and positional_separator (/) fall through.
	return ""
}

// docstring returns the leading string expression of a body block,
// with its quoting stripped.
func (w *pyWalker) docstring(body *sitter.Node) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return stripQuotes(parser.GetNodeText(str, w.source))
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

func (w *pyWalker) emitCall(node *sitter.Node) {
	name := calleeName(node.ChildByFieldName("function"), w.source)
	if name == "" {
		return
	}

	call := models.Node{
		Kind:     models.KindCall,
		Name:     name,
		Line:     int(node.StartPoint().Row) + 1,
		File:     w.file,
		Language: models.LangPython,
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := range int(args.NamedChildCount()) {
			arg := args.NamedChild(i)
			if arg.Type() == "keyword_argument" {
				kw := parser.GetNodeText(arg.ChildByFieldName("name"), w.source)
				if kw != "" {
					call.Keywords = append(call.Keywords, kw)
				}
				continue
			}
			if arg.Type() == "comment" {
				continue
			}
			call.Args = append(call.Args, parser.GetNodeText(arg, w.source))
		}
	}

	w.nodes = append(w.nodes, call)
	if len(w.defs) > 0 {
		idx := w.defs[len(w.defs)-1]
		w.nodes[idx].BodyCalls = append(w.nodes[idx].BodyCalls, name)
	}
}

// calleeName resolves the name a call is made under. Attribute calls
// like obj.method(...) resolve to the attribute name, consistent with
// the flat-namespace matching policy.
func calleeName(fn *sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return parser.GetNodeText(fn, source)
	case "attribute":
		return parser.GetNodeText(fn.ChildByFieldName("attribute"), source)
	}
	return ""
}

// emitImports handles `import a, b.c as d`: one node per imported
// name, using the bound name for aliased imports.
func (w *pyWalker) emitImports(node *sitter.Node, line int) {
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			w.emitImport(parser.GetNodeText(child, w.source), line)
		case "aliased_import":
			w.emitImport(parser.GetNodeText(child.ChildByFieldName("alias"), w.source), line)
		}
	}
}

// emitImportFrom handles `from m import x, y as z`: one node per
// imported name, skipping the module itself.
func (w *pyWalker) emitImportFrom(node *sitter.Node, line int) {
	module := node.ChildByFieldName("module_name")
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if module != nil && child.Equal(module) {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			w.emitImport(parser.GetNodeText(child, w.source), line)
		case "aliased_import":
			w.emitImport(parser.GetNodeText(child.ChildByFieldName("alias"), w.source), line)
		case "wildcard_import":
			w.emitImport("*", line)
		}
	}
}

func (w *pyWalker) emitImport(name string, line int) {
	if name == "" {
		return
	}
	w.nodes = append(w.nodes, models.Node{
		Kind:     models.KindImport,
		Name:     name,
		Line:     line,
		File:     w.file,
		Language: models.LangPython,
	})
}
