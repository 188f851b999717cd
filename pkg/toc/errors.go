package toc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrImportNotFound is wrapped by ImportError when the imported document
	// does not contain the requested page.
	ErrImportNotFound = errors.New("imported page not found")
	// ErrNestedImport is wrapped by ImportError when an imported subtree
	// itself contains an import node.
	ErrNestedImport = errors.New("nested imports are not supported")
	// ErrDuplicateID is returned when adding a page whose id is taken.
	ErrDuplicateID = errors.New("duplicate page id")
	// ErrSolePage is returned when removing the last remaining page.
	ErrSolePage = errors.New("cannot remove the only page")
	// ErrCannotMove is returned when a move would leave the sibling list.
	ErrCannotMove = errors.New("cannot move page further")
	// ErrImportedNode is returned when editing a page owned by another document.
	ErrImportedNode = errors.New("page belongs to an imported document")
	// ErrRoot is returned when an edit targets the tree root.
	ErrRoot = errors.New("operation not allowed on the root")
)

// MalformedError reports a TOC document that does not have the expected shape.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed toc: %s", e.Reason)
	}
	return fmt.Sprintf("malformed toc at %s: %s", e.Path, e.Reason)
}

// ImportError reports an import node that could not be resolved.
type ImportError struct {
	Root   string
	NodeID string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("failed to import %q from %q: %v", e.NodeID, e.Root, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// DuplicateIDError lists pages whose id was already registered. The tree is
// still usable: the first page with each id is the one Page returns.
type DuplicateIDError struct {
	IDs []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate page ids: %s", strings.Join(e.IDs, ", "))
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}
