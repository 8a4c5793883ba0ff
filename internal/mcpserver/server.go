package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xmazu/envsync/internal/audit"
	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/updater"
	"github.com/xmazu/envsync/internal/workspace"
)

type workdirArgs struct {
	Workdir string `json:"workdir" jsonschema:"directory inside the workspace (default: current)"`
}

type syncArgs struct {
	Workdir    string `json:"workdir" jsonschema:"directory inside the workspace (default: current)"`
	Template   string `json:"template" jsonschema:"template path relative to the workspace root; all templates when empty"`
	OnlyEmpty  bool   `json:"only_empty" jsonschema:"only fill keys the output leaves empty or lacks"`
	OnlyFilled bool   `json:"only_filled" jsonschema:"only touch keys the output already fills"`
	DryRun     bool   `json:"dry_run" jsonschema:"report what would change without writing"`
}

type auditArgs struct {
	Count   int    `json:"count" jsonschema:"number of entries to return (default: 20)"`
	Workdir string `json:"workdir" jsonschema:"directory inside the workspace (default: current)"`
}

// NewServer registers the envsync tools. Tools report key names only; values
// never leave the machine through this server.
func NewServer(version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "envsync",
		Version: version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_templates",
		Description: "List env templates (.env.example and friends) in the workspace with the output file each one feeds and whether that output exists.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args workdirArgs) (*mcpsdk.CallToolResult, any, error) {
		return listTemplates(args), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "check_env",
		Description: "Compare every env template with its output by key. Returns missing, empty and extra key names per template. Never returns values.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args workdirArgs) (*mcpsdk.CallToolResult, any, error) {
		return checkEnv(ctx, args), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "sync_env",
		Description: "Bring env outputs up to date with their templates without prompting: keys the output lacks are added with the template default, existing values are kept. The previous output is backed up. Returns the key names that were added.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args syncArgs) (*mcpsdk.CallToolResult, any, error) {
		return syncEnv(ctx, args), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "audit_show",
		Description: "Show recent entries of the workspace audit log: which env files were updated or restored, when, and which keys changed.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args auditArgs) (*mcpsdk.CallToolResult, any, error) {
		return auditShow(args), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "audit_verify",
		Description: "Verify the integrity of the audit log chain. Checks that each entry's prev_hash matches the hash of the previous entry. Reports any breaks in the chain.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args workdirArgs) (*mcpsdk.CallToolResult, any, error) {
		return auditVerify(args), nil, nil
	})

	return server
}

func Run(ctx context.Context, version string) error {
	return NewServer(version).Run(ctx, &mcpsdk.StdioTransport{})
}

func listTemplates(args workdirArgs) *mcpsdk.CallToolResult {
	p, err := project.Open(workdir(args.Workdir))
	if err != nil {
		return errorResult(err.Error())
	}
	pairs, err := p.Pairs()
	if err != nil {
		return errorResult(err.Error())
	}
	type item struct {
		workspace.Pair
		Exists bool `json:"exists"`
	}
	items := make([]item, 0, len(pairs))
	for _, pair := range pairs {
		items = append(items, item{Pair: pair, Exists: workspace.Exists(p.Abs(pair.Output))})
	}
	return successResult(map[string]any{"root": p.Root, "templates": items})
}

func checkEnv(ctx context.Context, args workdirArgs) *mcpsdk.CallToolResult {
	p, err := project.Open(workdir(args.Workdir))
	if err != nil {
		return errorResult(err.Error())
	}
	reports, err := p.CheckAll(ctx)
	if err != nil {
		return errorResult(err.Error())
	}
	ok := true
	for _, r := range reports {
		ok = ok && r.OK()
	}
	return successResult(map[string]any{"root": p.Root, "ok": ok, "reports": reports})
}

func syncEnv(ctx context.Context, args syncArgs) *mcpsdk.CallToolResult {
	if args.OnlyEmpty && args.OnlyFilled {
		return errorResult("only_empty and only_filled are mutually exclusive")
	}
	p, err := project.Open(workdir(args.Workdir))
	if err != nil {
		return errorResult(err.Error())
	}

	var pairs []workspace.Pair
	if args.Template != "" {
		if !filepath.IsLocal(filepath.FromSlash(args.Template)) {
			return errorResult(fmt.Sprintf("%s is outside the workspace", args.Template))
		}
		out, ok := workspace.OutputFor(args.Template)
		if !ok {
			return errorResult(fmt.Sprintf("%s is not a template", args.Template))
		}
		pairs = []workspace.Pair{{Template: args.Template, Output: out}}
	} else if pairs, err = p.Pairs(); err != nil {
		return errorResult(err.Error())
	}

	type synced struct {
		workspace.Pair
		Created bool     `json:"created"`
		Written bool     `json:"written"`
		Added   []string `json:"added"`
	}
	results := make([]synced, 0, len(pairs))
	opts := project.UpdateOptions{
		Filter: updater.Filter{OnlyEmpty: args.OnlyEmpty, OnlyFilled: args.OnlyFilled},
		DryRun: args.DryRun,
		Op:     audit.OpMCPSync,
		Tool:   "sync_env",
	}
	for _, pair := range pairs {
		res, err := p.Update(ctx, p.Abs(pair.Template), p.Abs(pair.Output), opts, updater.Defaults)
		if err != nil {
			return errorResult(fmt.Sprintf("%s: %v", pair.Template, err))
		}
		results = append(results, synced{
			Pair:    pair,
			Created: res.Created,
			Written: res.Written,
			Added:   res.Summary.Added,
		})
	}
	return successResult(map[string]any{"root": p.Root, "dry_run": args.DryRun, "results": results})
}

func auditShow(args auditArgs) *mcpsdk.CallToolResult {
	p, err := project.Open(workdir(args.Workdir))
	if err != nil {
		return errorResult(err.Error())
	}
	count := args.Count
	if count <= 0 {
		count = 20
	}
	entries, err := audit.Show(p.Root, count)
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			return successResult(map[string]any{"entries": []any{}, "message": "No audit log found"})
		}
		return errorResult(err.Error())
	}
	return successResult(map[string]any{"entries": entries})
}

func auditVerify(args workdirArgs) *mcpsdk.CallToolResult {
	p, err := project.Open(workdir(args.Workdir))
	if err != nil {
		return errorResult(err.Error())
	}
	result, err := audit.Verify(p.Root)
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			return successResult(map[string]any{"verified": false, "message": "No audit log found"})
		}
		return errorResult(err.Error())
	}

	msg := "Audit log chain integrity verified"
	if !result.OK() {
		msg = "Chain breaks detected - log may have been tampered with"
	}
	return successResult(map[string]any{
		"verified":      result.OK(),
		"total_entries": result.TotalEntries,
		"breaks":        result.Breaks,
		"message":       msg,
	})
}

func workdir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
