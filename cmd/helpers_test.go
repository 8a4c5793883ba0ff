package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/config"
)

// setupWorkspace creates a workspace root with the given files, makes it the
// working directory and points the config and state dirs at temp dirs.
func setupWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv(config.ConfigDirEnv, t.TempDir())
	t.Setenv(config.StateDirEnv, t.TempDir())

	root := t.TempDir()
	if _, ok := files[config.SettingsFileName]; !ok {
		files[config.SettingsFileName] = ""
	}
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	t.Chdir(root)
	return root
}

// testCommand returns a command whose stdin reads input and whose output is
// captured.
func testCommand(input string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
