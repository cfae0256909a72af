package output

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
)

// TreeNode is one directory or file of a rendered file tree.
type TreeNode struct {
	Name        string
	Description string
	Children    map[string]*TreeNode
}

func (n *TreeNode) isDir() bool {
	return n.Children != nil
}

// child returns the named child, creating it on first use.
func (n *TreeNode) child(name string, dir bool) *TreeNode {
	if n.Children == nil {
		n.Children = map[string]*TreeNode{}
	}
	c, ok := n.Children[name]
	if !ok {
		c = &TreeNode{Name: name}
		n.Children[name] = c
	}
	if dir && c.Children == nil {
		c.Children = map[string]*TreeNode{}
	}
	return c
}

// sorted returns the children with directories first, then by name.
func (n *TreeNode) sorted() []*TreeNode {
	out := make([]*TreeNode, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].isDir() != out[j].isDir() {
			return out[i].isDir()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RenderFileTree renders the files under root. Files maps relative paths to
// a short description shown after the file name.
func RenderFileTree(root string, files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	top := &TreeNode{Name: root, Children: map[string]*TreeNode{}}
	for p, desc := range files {
		dir, file := path.Split(filepath.ToSlash(p))
		current := top
		for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
			if part != "" {
				current = current.child(part, true)
			}
		}
		current.child(file, false).Description = desc
	}

	styles := GetStyles()
	t := buildTree(top, styles).
		Root(styles.Bold.Render(strings.TrimSuffix(root, "/") + "/"))
	return t.String() + "\n"
}

func buildTree(node *TreeNode, styles *Styles) *tree.Tree {
	t := tree.New().
		Enumerator(tree.DefaultEnumerator).
		EnumeratorStyle(styles.Muted.PaddingRight(1))

	for _, c := range node.sorted() {
		if c.isDir() {
			t.Child(buildTree(c, styles).Root(c.Name + "/"))
			continue
		}
		label := c.Name
		if c.Description != "" {
			label += "  " + styles.Muted.Render(c.Description)
		}
		t.Child(label)
	}
	return t
}
