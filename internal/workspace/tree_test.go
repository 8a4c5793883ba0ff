package workspace

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildTree(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		check func(t *testing.T, root *TreeNode)
	}{
		{
			name:  "single template",
			pairs: []Pair{{Template: ".env.example", Output: ".env"}},
			check: func(t *testing.T, root *TreeNode) {
				if root.Name != "." {
					t.Errorf("root.Name = %q, want '.'", root.Name)
				}
				if len(root.Children) != 1 {
					t.Fatalf("len(root.Children) = %d, want 1", len(root.Children))
				}
				child := root.Children[0]
				if child.Name != ".env.example" {
					t.Errorf("child.Name = %q, want '.env.example'", child.Name)
				}
				if child.Pair == nil || child.Pair.Output != ".env" {
					t.Errorf("child.Pair = %+v, want output .env", child.Pair)
				}
			},
		},
		{
			name: "nested templates",
			pairs: []Pair{
				{Template: "apps/web/.env.example", Output: "apps/web/.env"},
				{Template: "apps/api/.env.example", Output: "apps/api/.env"},
			},
			check: func(t *testing.T, root *TreeNode) {
				if len(root.Children) != 1 {
					t.Fatalf("len(root.Children) = %d, want 1", len(root.Children))
				}
				if root.Children[0].Name != "apps" {
					t.Errorf("child.Name = %q, want 'apps'", root.Children[0].Name)
				}
				if len(root.Children[0].Children) != 2 {
					t.Fatalf("len(apps.Children) = %d, want 2", len(root.Children[0].Children))
				}
				if root.Children[0].Children[0].Name != "api" {
					t.Errorf("first dir = %q, want 'api'", root.Children[0].Children[0].Name)
				}
			},
		},
		{
			name: "files before directories",
			pairs: []Pair{
				{Template: "apps/web/.env.example", Output: "apps/web/.env"},
				{Template: ".env.example", Output: ".env"},
			},
			check: func(t *testing.T, root *TreeNode) {
				if len(root.Children) != 2 {
					t.Fatalf("len(root.Children) = %d, want 2", len(root.Children))
				}
				if root.Children[0].Name != ".env.example" {
					t.Errorf("first child.Name = %q, want '.env.example'", root.Children[0].Name)
				}
				if root.Children[1].Name != "apps" {
					t.Errorf("second child.Name = %q, want 'apps'", root.Children[1].Name)
				}
			},
		},
		{
			name:  "empty",
			pairs: nil,
			check: func(t *testing.T, root *TreeNode) {
				if len(root.Children) != 0 {
					t.Errorf("len(root.Children) = %d, want 0", len(root.Children))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, BuildTree(tt.pairs))
		})
	}
}

func TestPrintTree(t *testing.T) {
	root := BuildTree([]Pair{
		{Template: ".env.example", Output: ".env"},
		{Template: "apps/web/.env.example", Output: "apps/web/.env"},
	})

	var buf bytes.Buffer
	PrintTree(&buf, root, func(p Pair) string { return "-> " + p.Output })

	want := strings.Join([]string{
		"├─ .env.example  -> .env",
		"└─ apps",
		"   └─ web",
		"      └─ .env.example  -> apps/web/.env",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("PrintTree:\n%s\nwant:\n%s", got, want)
	}
}
