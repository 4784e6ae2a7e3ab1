package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/btweave/blackboard"
	"github.com/vk/btweave/internal/ctxlog"
	"github.com/vk/btweave/internal/xmldom"
	"github.com/vk/btweave/registry"
)

// Parser owns every XML document opened during one parse session and the
// index of tree IDs across them. A Parser is single-threaded and
// non-reentrant: Load calls mutate the document set, Instantiate reads it.
// Discard the Parser to release the session.
type Parser struct {
	factory     *registry.Registry
	pkgResolver PackageResolver

	// docs holds the root elements of every opened document in load
	// order. The first document is the primary one: its root attributes
	// drive main-tree selection.
	docs []*xmldom.Element

	// treeRoots maps tree IDs to their <BehaviorTree> elements across all
	// documents; treeOrder remembers insertion order.
	treeRoots map[string]*xmldom.Element
	treeOrder []string

	// currentPath is the directory of the most recently loaded file,
	// used to resolve relative include paths.
	currentPath string

	suffixCount int
}

// Option configures a Parser.
type Option func(*Parser)

// WithPackageResolver enables package-relative include resolution.
func WithPackageResolver(resolver PackageResolver) Option {
	return func(p *Parser) {
		p.pkgResolver = resolver
	}
}

// New creates a Parser bound to a factory registry.
func New(factory *registry.Registry, opts ...Option) *Parser {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	p := &Parser{
		factory:     factory,
		treeRoots:   make(map[string]*xmldom.Element),
		currentPath: cwd,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadFromFile loads a document and its include chain from a file.
func (p *Parser) LoadFromFile(ctx context.Context, filename string) error {
	root, err := p.readDocument(filename)
	if err != nil {
		return err
	}
	return p.loadDocument(ctx, root)
}

// LoadFromText loads a document and its include chain from XML text.
// Relative include paths resolve against the directory of the most recent
// file load, or the working directory if none happened yet.
func (p *Parser) LoadFromText(ctx context.Context, text string) error {
	root, err := xmldom.ParseString(text)
	if err != nil {
		return &SyntaxError{Err: err}
	}
	return p.loadDocument(ctx, root)
}

// readDocument parses one file and moves the current-path cursor to its
// directory.
func (p *Parser) readDocument(filename string) (*xmldom.Element, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	root, err := xmldom.ParseString(string(data))
	if err != nil {
		return nil, &SyntaxError{Err: fmt.Errorf("%s: %w", filename, err)}
	}
	abs, err := filepath.Abs(filename)
	if err == nil {
		p.currentPath = filepath.Dir(abs)
	}
	return root, nil
}

// loadDocument appends a parsed document, resolves its include chain
// depth-first, indexes every tree the new documents declare, and validates
// each of them.
func (p *Parser) loadDocument(ctx context.Context, root *xmldom.Element) error {
	logger := ctxlog.FromContext(ctx)
	firstNew := len(p.docs)

	if err := p.collectDocuments(ctx, root); err != nil {
		return err
	}
	for _, doc := range p.docs[firstNew:] {
		if err := p.indexTreeRoots(doc); err != nil {
			return err
		}
	}
	for _, doc := range p.docs[firstNew:] {
		if err := p.validateDocument(doc); err != nil {
			return err
		}
	}
	if err := p.checkMainTreeSelection(); err != nil {
		return err
	}

	logger.Debug("Document set loaded and validated.",
		"documents", len(p.docs), "trees", len(p.treeOrder))
	return nil
}

// collectDocuments appends the document and, depth-first, every document
// reachable through its <include> elements.
func (p *Parser) collectDocuments(ctx context.Context, root *xmldom.Element) error {
	p.docs = append(p.docs, root)

	if root.Name != "root" {
		// The validator reports this; includes of a malformed document
		// are not chased.
		return nil
	}
	for _, include := range root.ChildrenNamed("include") {
		path, ok := include.Attr("path")
		if !ok {
			return &SchemaError{Line: include.Line, Msg: "The node <include> must have the attribute [path]"}
		}
		pkg, _ := include.Attr("ros_pkg")
		resolved, err := p.resolveIncludePath(ctx, path, pkg)
		if err != nil {
			return err
		}
		included, err := p.readDocument(resolved)
		if err != nil {
			return err
		}
		if err := p.collectDocuments(ctx, included); err != nil {
			return err
		}
	}
	return nil
}

// indexTreeRoots registers every <BehaviorTree> of a document in the
// tree-root index. Trees without an ID attribute get an auto-generated
// one, numbered per parser instance.
func (p *Parser) indexTreeRoots(doc *xmldom.Element) error {
	for _, bt := range doc.ChildrenNamed("BehaviorTree") {
		id, ok := bt.Attr("ID")
		if !ok {
			id = fmt.Sprintf("BehaviorTree_%d", p.suffixCount)
			p.suffixCount++
		}
		if _, exists := p.treeRoots[id]; exists {
			return &SchemaError{Line: bt.Line, Msg: fmt.Sprintf("A tree with ID [%s] is already registered", id)}
		}
		p.treeRoots[id] = bt
		p.treeOrder = append(p.treeOrder, id)
	}
	return nil
}

// primaryDoc returns the first loaded document, or nil.
func (p *Parser) primaryDoc() *xmldom.Element {
	if len(p.docs) == 0 {
		return nil
	}
	return p.docs[0]
}

// mainTreeID selects the tree to instantiate: the primary document's
// main_tree_to_execute attribute, or the sole known tree.
func (p *Parser) mainTreeID() (string, error) {
	primary := p.primaryDoc()
	if primary == nil {
		return "", &UsageError{Msg: "no document was loaded"}
	}
	if id, ok := primary.Attr("main_tree_to_execute"); ok {
		if _, known := p.treeRoots[id]; !known {
			return "", &UsageError{Msg: "The tree specified in [main_tree_to_execute] can't be found"}
		}
		return id, nil
	}
	if len(p.treeOrder) == 1 {
		return p.treeOrder[0], nil
	}
	return "", &UsageError{Msg: "[main_tree_to_execute] was not specified correctly"}
}

// checkMainTreeSelection enforces the main-tree selection rule after each
// load: an explicit selection must resolve, and an implicit one requires
// exactly one tree across all documents.
func (p *Parser) checkMainTreeSelection() error {
	primary := p.primaryDoc()
	if primary == nil || primary.Name != "root" {
		return nil
	}
	if id, ok := primary.Attr("main_tree_to_execute"); ok {
		if _, known := p.treeRoots[id]; !known {
			return &UsageError{Msg: "The tree specified in [main_tree_to_execute] can't be found"}
		}
		return nil
	}
	if len(p.treeOrder) != 1 {
		return &UsageError{Msg: "If you don't specify the attribute [main_tree_to_execute], " +
			"your file must contain a single BehaviorTree"}
	}
	return nil
}

// BuildTreeFromText loads a definition from XML text and instantiates it
// in one step.
func BuildTreeFromText(ctx context.Context, factory *registry.Registry, text string, bb *blackboard.Blackboard) (*Tree, error) {
	parser := New(factory)
	if err := parser.LoadFromText(ctx, text); err != nil {
		return nil, err
	}
	return parser.Instantiate(ctx, bb)
}

// BuildTreeFromFile loads a definition from a file and instantiates it in
// one step.
func BuildTreeFromFile(ctx context.Context, factory *registry.Registry, filename string, bb *blackboard.Blackboard) (*Tree, error) {
	parser := New(factory)
	if err := parser.LoadFromFile(ctx, filename); err != nil {
		return nil, err
	}
	return parser.Instantiate(ctx, bb)
}

// treeNames returns the known tree IDs in registration order, for
// diagnostics.
func (p *Parser) treeNames() string {
	return strings.Join(p.treeOrder, ", ")
}
