package cmd

import (
	"strings"
	"testing"
)

func TestRunLs(t *testing.T) {
	t.Run("lists templates of the workspace", func(t *testing.T) {
		setupWorkspace(t, map[string]string{
			".env.example":             "A=1\n",
			".env":                     "A=1\n",
			"apps/web/.env.sample":     "B=2\n",
			"node_modules/x/.env.dist": "C=3\n",
		})

		cmd, out, _ := testCommand("")
		if err := runLs(cmd, nil); err != nil {
			t.Fatalf("runLs(): %v", err)
		}

		got := out.String()
		for _, want := range []string{"Workspace:", "envsync settings", ".env.example", "-> .env", "apps", ".env.sample", "-> apps/web/.env", "missing"} {
			if !strings.Contains(got, want) {
				t.Errorf("output should contain %q, got:\n%s", want, got)
			}
		}
		if strings.Contains(got, "node_modules") {
			t.Errorf("node_modules should be skipped, got:\n%s", got)
		}
	})

	t.Run("with directory argument", func(t *testing.T) {
		root := setupWorkspace(t, map[string]string{
			"sub/.env.example": "A=1\n",
		})

		cmd, out, _ := testCommand("")
		if err := runLs(cmd, []string{root + "/sub"}); err != nil {
			t.Fatalf("runLs(%s): %v", root, err)
		}
		if strings.Contains(out.String(), "Workspace:") {
			t.Errorf("explicit directory should not print the workspace header")
		}
		if !strings.Contains(out.String(), ".env.example") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		cmd, out, _ := testCommand("")
		if err := runLs(cmd, []string{t.TempDir()}); err != nil {
			t.Fatalf("runLs(): %v", err)
		}
		if !strings.Contains(out.String(), "No templates found") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("invalid directory returns error", func(t *testing.T) {
		if err := runLs(nil, []string{"/nonexistent-path-12345"}); err == nil {
			t.Error("runLs(nonexistent) should error")
		}
	})
}
