package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xmazu/envsync/internal/watch"
)

func TestRunWatch(t *testing.T) {
	reset := func() { watchAll, watchDebounce = false, watch.DefaultDebounce }
	reset()
	t.Cleanup(reset)

	root := setupWorkspace(t, map[string]string{
		".env.example":        "A=1\nB=2\n",
		"broken/.env.example": "C=3\n",
	})
	if err := os.Mkdir(filepath.Join(root, "broken", ".env"), 0755); err != nil {
		t.Fatal(err)
	}
	watchAll = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	output := filepath.Join(root, ".env")
	go func() {
		deadline := time.After(10 * time.Second)
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-deadline:
				cancel()
				return
			case <-tick.C:
				if _, err := os.Stat(output); err == nil {
					cancel()
					return
				}
			}
		}
	}()

	cmd, out, _ := testCommand("")
	cmd.SetContext(ctx)
	if err := runWatch(cmd, nil); err != nil {
		t.Fatalf("runWatch: %v", err)
	}

	if got := readFile(t, output); got != "A=1\nB=2\n" {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(out.String(), "broken/.env.example") {
		t.Errorf("failed pair not reported:\n%s", out.String())
	}
}

func TestRunWatchNoTemplates(t *testing.T) {
	reset := func() { watchAll, watchDebounce = false, watch.DefaultDebounce }
	reset()
	t.Cleanup(reset)

	setupWorkspace(t, map[string]string{})
	watchAll = true

	cmd, _, _ := testCommand("")
	if err := runWatch(cmd, nil); err == nil {
		t.Fatal("expected error without templates")
	}
}
