package filetree

import (
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cloud-ide/backend/internal/models"
)

// Node is a FileNode with its children, as rendered by the file explorer.
type Node struct {
	*models.FileNode
	Children []*Node `json:"children,omitempty"`
}

// Sort returns nodes in presentation order: folders before files, then by name
// using locale-aware collation. The input slice is not modified.
func Sort(nodes []*models.FileNode) []*models.FileNode {
	sorted := make([]*models.FileNode, len(nodes))
	copy(sorted, nodes)

	// Collators keep internal buffers; one per call.
	c := collate.New(language.Und)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Type != b.Type {
			return a.IsFolder()
		}
		return c.CompareString(a.Name, b.Name) < 0
	})
	return sorted
}

// Roots returns the root-level nodes in presentation order.
func Roots(files []*models.FileNode) []*models.FileNode {
	var roots []*models.FileNode
	for _, f := range files {
		if f.ParentID == nil {
			roots = append(roots, f)
		}
	}
	return Sort(roots)
}

// Children returns the direct children of parentID in presentation order.
func Children(files []*models.FileNode, parentID uuid.UUID) []*models.FileNode {
	var children []*models.FileNode
	for _, f := range files {
		if f.ParentID != nil && *f.ParentID == parentID {
			children = append(children, f)
		}
	}
	return Sort(children)
}

// Build nests a flat project listing into a tree. Nodes whose parent is not in
// files are dropped, as are nodes unreachable from a root.
func Build(files []*models.FileNode) []*Node {
	byParent := make(map[uuid.UUID][]*models.FileNode)
	for _, f := range files {
		if f.ParentID != nil {
			byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
		}
	}

	var build func(list []*models.FileNode, seen map[uuid.UUID]bool) []*Node
	build = func(list []*models.FileNode, seen map[uuid.UUID]bool) []*Node {
		sorted := Sort(list)
		nodes := make([]*Node, 0, len(sorted))
		for _, f := range sorted {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			nodes = append(nodes, &Node{FileNode: f, Children: build(byParent[f.ID], seen)})
		}
		return nodes
	}
	return build(Roots(files), make(map[uuid.UUID]bool))
}

// IsDescendant reports whether candidate lies in the subtree rooted at
// ancestor (ancestor itself included).
func IsDescendant(files []*models.FileNode, ancestor, candidate uuid.UUID) bool {
	parents := make(map[uuid.UUID]*uuid.UUID, len(files))
	for _, f := range files {
		parents[f.ID] = f.ParentID
	}
	seen := make(map[uuid.UUID]bool)
	for cur := &candidate; cur != nil; cur = parents[*cur] {
		if *cur == ancestor {
			return true
		}
		if seen[*cur] {
			return false
		}
		seen[*cur] = true
	}
	return false
}
