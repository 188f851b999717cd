package toc

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/ohler55/ojg/sen"
)

// DefaultImportFile is the TOC file name looked up under an import root.
const DefaultImportFile = "toc.json"

// Loader fetches a document by path. Implementations may block on disk or
// network access; the builder waits for each load to complete.
type Loader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// Options configures Build.
type Options struct {
	// Loader resolves import nodes. Required only if the document imports.
	Loader Loader
	// PathPrefix is prepended to derived page URLs.
	PathPrefix string
	// ImportFile is the file name under an import root. Defaults to toc.json.
	ImportFile string
}

const (
	keyID         = "id"
	keyTitle      = "title"
	keyURL        = "url"
	keyAbstract   = "isAbstract"
	keyChildren   = "children"
	keyImportRoot = "importRoot"
	keyImportNode = "importNode"
)

var knownKeys = map[string]bool{
	keyID: true, keyTitle: true, keyURL: true, keyAbstract: true,
	keyChildren: true, keyImportRoot: true, keyImportNode: true,
}

// Parse reads a TOC document. Both strict JSON and the relaxed forms found in
// hand-written files (unquoted keys, single quotes, missing or trailing
// commas) are accepted.
func Parse(source []byte) (map[string]any, error) {
	v, err := sen.Parse(source)
	if err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedError{Reason: fmt.Sprintf("root must be an object, got %T", v)}
	}
	return doc, nil
}

// Build parses source and returns the resolved page tree.
//
// Import nodes are resolved through opts.Loader; any failure to load the
// imported document or to find the imported page fails the whole build with
// an *ImportError. Pages sharing an id are reported with a *DuplicateIDError,
// returned together with the tree so callers can inspect it.
func Build(ctx context.Context, source []byte, opts Options) (*Tree, error) {
	doc, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return BuildDocument(ctx, doc, opts)
}

// BuildDocument is Build for an already parsed document.
func BuildDocument(ctx context.Context, doc map[string]any, opts Options) (*Tree, error) {
	if opts.ImportFile == "" {
		opts.ImportFile = DefaultImportFile
	}
	b := &builder{ctx: ctx, opts: opts, docs: make(map[string]map[string]any)}

	root := &Node{Extra: extraKeys(doc, knownKeys)}
	children, err := b.children(doc, "", "", false)
	if err != nil {
		return nil, err
	}
	root.Children = children

	t := &Tree{Root: root, pathPrefix: opts.PathPrefix}
	t.reindex()
	if len(t.conflicts) > 0 {
		ids := make([]string, len(t.conflicts))
		for i, n := range t.conflicts {
			ids[i] = n.ID
		}
		return t, &DuplicateIDError{IDs: ids}
	}
	return t, nil
}

type builder struct {
	ctx  context.Context
	opts Options
	docs map[string]map[string]any
}

func (b *builder) children(rec map[string]any, recPath, prefix string, imported bool) ([]*Node, error) {
	raw, ok := rec[keyChildren]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &MalformedError{Path: joinPath(recPath, keyChildren), Reason: "children must be a list"}
	}

	nodes := make([]*Node, 0, len(list))
	for i, item := range list {
		p := fmt.Sprintf("%s[%d]", joinPath(recPath, keyChildren), i)
		child, ok := item.(map[string]any)
		if !ok {
			return nil, &MalformedError{Path: p, Reason: fmt.Sprintf("entry must be an object, got %T", item)}
		}
		n, err := b.node(child, p, prefix, imported)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (b *builder) node(rec map[string]any, recPath, prefix string, imported bool) (*Node, error) {
	if _, ok := rec[keyImportRoot]; ok {
		return b.importNode(rec, recPath, prefix, imported)
	}
	if _, ok := rec[keyImportNode]; ok {
		return b.importNode(rec, recPath, prefix, imported)
	}

	id, err := stringField(rec, keyID, recPath)
	if err != nil {
		return nil, err
	}
	n := &Node{Extra: extraKeys(rec, knownKeys)}
	if err := fillPage(n, rec, recPath); err != nil {
		return nil, err
	}
	if id == "" && !n.Abstract {
		return nil, &MalformedError{Path: recPath, Reason: "page has no id"}
	}
	if id != "" {
		n.ID = prefix + id
	}
	n.Meta.Imported = imported

	n.Children, err = b.children(rec, recPath, prefix, imported)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (b *builder) importNode(rec map[string]any, recPath, prefix string, imported bool) (*Node, error) {
	root, err := stringField(rec, keyImportRoot, recPath)
	if err != nil {
		return nil, err
	}
	nodeID, err := stringField(rec, keyImportNode, recPath)
	if err != nil {
		return nil, err
	}
	if root == "" || nodeID == "" {
		return nil, &MalformedError{Path: recPath, Reason: "import needs both importRoot and importNode"}
	}
	if imported {
		return nil, &ImportError{Root: root, NodeID: nodeID, Err: ErrNestedImport}
	}

	doc, err := b.document(root)
	if err != nil {
		return nil, &ImportError{Root: root, NodeID: nodeID, Err: err}
	}
	target, targetPath := findRecord(doc, nodeID, "")
	if target == nil {
		return nil, &ImportError{Root: root, NodeID: nodeID, Err: ErrImportNotFound}
	}

	n := &Node{
		ImportRoot: root,
		ImportNode: nodeID,
		Extra:      extraKeys(rec, knownKeys),
	}
	if err := fillPage(n, target, targetPath); err != nil {
		return nil, &ImportError{Root: root, NodeID: nodeID, Err: err}
	}
	title, err := stringField(rec, keyTitle, recPath)
	if err != nil {
		return nil, err
	}
	if title != "" {
		n.Title = title
	}

	subPrefix := prefix + root + "/"
	n.ID = subPrefix + nodeID
	n.Meta.Import = &ImportRef{Root: root, NodeID: nodeID}

	n.Children, err = b.children(target, targetPath, subPrefix, true)
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			return nil, err
		}
		return nil, &ImportError{Root: root, NodeID: nodeID, Err: err}
	}
	return n, nil
}

// document loads and parses the TOC under root, once per build.
func (b *builder) document(root string) (map[string]any, error) {
	if doc, ok := b.docs[root]; ok {
		return doc, nil
	}
	if b.opts.Loader == nil {
		return nil, errors.New("no loader configured")
	}
	data, err := b.opts.Loader.Load(b.ctx, path.Join(root, b.opts.ImportFile))
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	b.docs[root] = doc
	return doc, nil
}

// findRecord searches rec's descendants depth first for a page with id.
func findRecord(rec map[string]any, id, recPath string) (map[string]any, string) {
	list, _ := rec[keyChildren].([]any)
	for i, item := range list {
		child, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := fmt.Sprintf("%s[%d]", joinPath(recPath, keyChildren), i)
		if cid, _ := child[keyID].(string); cid == id {
			return child, p
		}
		if found, fp := findRecord(child, id, p); found != nil {
			return found, fp
		}
	}
	return nil, ""
}

func fillPage(n *Node, rec map[string]any, recPath string) error {
	var err error
	if n.Title, err = stringField(rec, keyTitle, recPath); err != nil {
		return err
	}
	if n.URL, err = stringField(rec, keyURL, recPath); err != nil {
		return err
	}
	n.explicitURL = n.URL != ""
	if v, ok := rec[keyAbstract]; ok && v != nil {
		abstract, ok := v.(bool)
		if !ok {
			return &MalformedError{Path: joinPath(recPath, keyAbstract), Reason: "must be a boolean"}
		}
		n.Abstract = abstract
	}
	return nil
}

func stringField(rec map[string]any, key, recPath string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &MalformedError{Path: joinPath(recPath, key), Reason: fmt.Sprintf("must be a string, got %T", v)}
	}
	return s, nil
}

func extraKeys(rec map[string]any, known map[string]bool) map[string]any {
	var extra map[string]any
	for k, v := range rec {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
