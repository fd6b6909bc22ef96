package fillpriority

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

const (
	JSONFile     = "fill-priority.json"
	MarkdownFile = "fill-priority.md"

	defaultTop = 100
)

type Totals struct {
	Programs int `json:"programs"`
	NeedFill int `json:"needFill"`
	ReadyAll int `json:"readyAll"`
}

type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Totals      Totals    `json:"totals"`
	Items       []Item    `json:"items"`
}

// Build ranks programs and keeps the top n that still need fill.
func Build(programs []*domain.Program, top int, now time.Time) Report {
	if top <= 0 {
		top = defaultTop
	}
	ranked := Rank(programs)

	r := Report{GeneratedAt: now.UTC(), Items: []Item{}}
	r.Totals.Programs = len(ranked)
	for _, it := range ranked {
		if !it.NeedsFill() {
			continue
		}
		r.Totals.NeedFill++
		if len(r.Items) < top {
			r.Items = append(r.Items, it)
		}
	}
	r.Totals.ReadyAll = r.Totals.Programs - r.Totals.NeedFill
	return r
}

// WriteMarkdown renders the report as a Markdown priority queue.
func (r Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# Fill Priority Report\n\n")
	b.WriteString("Generated: " + r.GeneratedAt.Format(time.RFC3339) + "\n\n")
	fmt.Fprintf(&b, "- Total scanned: **%d**\n", r.Totals.Programs)
	fmt.Fprintf(&b, "- Need fill (readiness < 3): **%d**\n", r.Totals.NeedFill)
	fmt.Fprintf(&b, "- Fully ready (readiness = 3): **%d**\n\n", r.Totals.ReadyAll)
	b.WriteString("## Priority Queue\n\n")
	b.WriteString("| Priority | Program | Provider | Readiness | Gaps |\n")
	b.WriteString("|---:|---|---|:---:|---|\n")
	for _, it := range r.Items {
		gaps := strings.Join(it.Gaps, ", ")
		if gaps == "" {
			gaps = "None"
		}
		b.WriteString("| " + strconv.Itoa(it.Priority) +
			" | " + EscapeCell(it.Name) +
			" | " + EscapeCell(it.Provider) +
			" | " + strconv.Itoa(it.Readiness) + "/3" +
			" | " + gaps + " |\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// EscapeCell makes a value safe inside a Markdown table cell.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return domain.CompactText(s, 0)
}

// WriteFiles writes the JSON and Markdown reports into dir.
func (r Report) WriteFiles(dir string) (jsonPath, mdPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create reports dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode report: %w", err)
	}
	jsonPath = filepath.Join(dir, JSONFile)
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", jsonPath, err)
	}

	mdPath = filepath.Join(dir, MarkdownFile)
	f, err := createFile(mdPath)
	if err != nil {
		return "", "", fmt.Errorf("create %s: %w", mdPath, err)
	}
	if err := r.WriteMarkdown(f); err != nil {
		_ = f.Close()
		return "", "", fmt.Errorf("write %s: %w", mdPath, err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("close %s: %w", mdPath, err)
	}
	return jsonPath, mdPath, nil
}

var createFile = func(name string) (io.WriteCloser, error) { return os.Create(name) }

// ─────────────────────────────
// CLI run
// ─────────────────────────────

type Lister interface {
	ListPrograms(ctx context.Context, opts directory.ListOptions) ([]*domain.Program, error)
}

// Run lists programs, builds the report and writes it to the reports dir.
func Run(ctx context.Context, store Lister, cfg config.FillAudit, log logger.Logger) (Report, error) {
	opts := directory.ListOptions{Max: cfg.Max}
	if cfg.OnlyActive {
		opts.ActiveValue = cfg.ActiveValue
	}
	programs, err := store.ListPrograms(ctx, opts)
	if err != nil {
		return Report{}, err
	}

	r := Build(programs, cfg.TopN, time.Now())
	jsonPath, mdPath, err := r.WriteFiles(cfg.ReportsDir)
	if err != nil {
		return r, err
	}
	log.Info("📋 Fill-priority report written",
		logger.Int("programs", r.Totals.Programs),
		logger.Int("need_fill", r.Totals.NeedFill),
		logger.String("json", jsonPath),
		logger.String("markdown", mdPath),
	)
	return r, nil
}
