package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	auditDir  = ".envsync"
	auditFile = "audit.log"
)

var (
	ErrNoAuditLog = errors.New("no audit log found")
	mu            sync.Mutex
)

type Op string

const (
	OpUpdate  Op = "update"
	OpRestore Op = "restore"
	OpWatch   Op = "watch"
	OpMCPSync Op = "mcp_sync"
)

// Entry is one line of the audit log. It records key names only, never
// values. Each entry carries the hash of the line before it.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Op        Op        `json:"op"`
	RunID     string    `json:"run,omitempty"`
	File      string    `json:"file,omitempty"`
	Keys      []string  `json:"keys,omitempty"`
	Backup    string    `json:"backup,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	PrevHash  string    `json:"prev_hash"`
}

type EntrySummary struct {
	Timestamp string   `json:"ts"`
	Op        string   `json:"op"`
	RunID     string   `json:"run,omitempty"`
	File      string   `json:"file,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	Backup    string   `json:"backup,omitempty"`
	Tool      string   `json:"tool,omitempty"`
}

// NewRunID tags the entries written by one invocation.
func NewRunID() string {
	return uuid.NewString()
}

func auditPath(workdir string) string {
	if workdir == "" {
		workdir, _ = os.Getwd()
	}
	return filepath.Join(workdir, auditDir, auditFile)
}

func lastHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var lastLine string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lastLine = scanner.Text()
	}
	if lastLine == "" {
		return ""
	}
	return hashLine(lastLine)
}

func hashLine(line string) string {
	hash := sha256.Sum256([]byte(line))
	return hex.EncodeToString(hash[:])
}

func Log(workdir string, op Op, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	path := auditPath(workdir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ensure audit dir: %w", err)
	}

	entry := &Entry{
		Timestamp: time.Now().UTC(),
		Op:        op,
		PrevHash:  lastHash(path),
	}
	for _, opt := range opts {
		opt(entry)
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, string(b)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

type Option func(*Entry)

func WithRunID(id string) Option {
	return func(e *Entry) {
		e.RunID = id
	}
}

func WithFile(path string) Option {
	return func(e *Entry) {
		e.File = path
	}
}

func WithKeys(keys []string) Option {
	return func(e *Entry) {
		e.Keys = keys
	}
}

func WithBackup(name string) Option {
	return func(e *Entry) {
		e.Backup = name
	}
}

func WithTool(name string) Option {
	return func(e *Entry) {
		e.Tool = name
	}
}

func readLines(workdir string) ([]string, error) {
	f, err := os.Open(auditPath(workdir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoAuditLog
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return lines, nil
}

// Show returns the last lastN entries, or all of them when lastN <= 0.
// Lines that do not decode are skipped.
func Show(workdir string, lastN int) ([]EntrySummary, error) {
	lines, err := readLines(workdir)
	if err != nil {
		return nil, err
	}
	if lastN > 0 && len(lines) > lastN {
		lines = lines[len(lines)-lastN:]
	}

	var entries []EntrySummary
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, EntrySummary{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Op:        string(e.Op),
			RunID:     e.RunID,
			File:      e.File,
			Keys:      e.Keys,
			Backup:    e.Backup,
			Tool:      e.Tool,
		})
	}
	return entries, nil
}

type VerifyResult struct {
	TotalEntries  int
	Breaks        []int
	FirstModified int
}

func (r *VerifyResult) OK() bool {
	return len(r.Breaks) == 0 && r.FirstModified == 0
}

// Verify walks the hash chain and reports the 1-based line numbers where it
// breaks.
func Verify(workdir string) (*VerifyResult, error) {
	lines, err := readLines(workdir)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{TotalEntries: len(lines)}
	if len(lines) == 0 {
		return result, nil
	}

	var first Entry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		result.FirstModified = 1
		return result, nil
	}
	if first.PrevHash != "" {
		result.Breaks = append(result.Breaks, 1)
	}

	for i := 1; i < len(lines); i++ {
		var entry Entry
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			result.Breaks = append(result.Breaks, i+1)
			continue
		}
		if entry.PrevHash != hashLine(lines[i-1]) {
			result.Breaks = append(result.Breaks, i+1)
		}
	}
	return result, nil
}
