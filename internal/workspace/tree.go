package workspace

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// TreeNode is a directory or template in the rendering of discovered pairs.
type TreeNode struct {
	Name     string
	Children []*TreeNode
	Pair     *Pair // nil for directories
}

func BuildTree(pairs []Pair) *TreeNode {
	root := &TreeNode{Name: "."}

	for i := range pairs {
		p := &pairs[i]
		parts := strings.Split(filepath.ToSlash(p.Template), "/")
		cur := root
		for j, part := range parts {
			if j == len(parts)-1 {
				cur.Children = append(cur.Children, &TreeNode{Name: part, Pair: p})
				break
			}
			var next *TreeNode
			for _, ch := range cur.Children {
				if ch.Name == part && ch.Pair == nil {
					next = ch
					break
				}
			}
			if next == nil {
				next = &TreeNode{Name: part}
				cur.Children = append(cur.Children, next)
			}
			cur = next
		}
	}

	SortTree(root)
	return root
}

// SortTree orders files before directories, each alphabetically.
func SortTree(node *TreeNode) {
	if len(node.Children) == 0 {
		return
	}

	sort.Slice(node.Children, func(i, j int) bool {
		ci, cj := node.Children[i], node.Children[j]
		fileI := ci.Pair != nil
		fileJ := cj.Pair != nil
		if fileI != fileJ {
			return fileI
		}
		return ci.Name < cj.Name
	})

	for _, ch := range node.Children {
		SortTree(ch)
	}
}

// PrintTree writes node to w. label decorates template entries, typically
// with the output status.
func PrintTree(w io.Writer, node *TreeNode, label func(Pair) string) {
	printTree(w, node, "", true, label)
}

func printTree(w io.Writer, node *TreeNode, prefix string, last bool, label func(Pair) string) {
	if node.Name != "." {
		conn := "├─ "
		if last {
			conn = "└─ "
		}
		line := prefix + conn + node.Name
		if node.Pair != nil && label != nil {
			if l := label(*node.Pair); l != "" {
				line += "  " + l
			}
		}
		fmt.Fprintln(w, line)
	}

	childPrefix := prefix
	if node.Name != "." {
		if last {
			childPrefix += "   "
		} else {
			childPrefix += "│  "
		}
	}

	for i, ch := range node.Children {
		printTree(w, ch, childPrefix, i == len(node.Children)-1, label)
	}
}
