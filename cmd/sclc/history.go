package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/interchange"
	"github.com/you-not-fish/scl/internal/interp"
	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/store"
	"github.com/you-not-fish/scl/internal/syntax"
)

// record stores u, and the final memory when the program ran, in the
// history database. Runs older than the configured retention are pruned.
func (c *cli) record(cmd *cobra.Command, u *unit, mem *interp.Memory) (string, error) {
	st, err := store.Open(c.cfg.Store.Path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	r, err := store.NewRun(u.path, u.src, u.toks, u.prog, u.diags)
	if err != nil {
		return "", err
	}
	if mem != nil {
		data, err := json.Marshal(mem.Snapshot())
		if err != nil {
			return "", fmt.Errorf("encode memory: %w", err)
		}
		r.Memory = string(data)
	}

	ctx := cmd.Context()
	if err := st.Record(ctx, r); err != nil {
		return "", err
	}
	if retention := c.cfg.Store.Retention.Duration; retention > 0 {
		n, err := st.Prune(ctx, retention)
		if err != nil {
			return "", err
		}
		c.logger.Debug("pruned runs", "count", n, "older_than", retention)
	}

	c.logger.Debug("run recorded", "id", r.ID, "file", u.path)
	fmt.Fprintf(cmd.ErrOrStderr(), "recorded run %s\n", r.ID)
	return r.ID, nil
}

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit  int
		path   string
		failed bool
		prune  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(c.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			w := cmd.OutOrStdout()
			if prune > 0 {
				n, err := st.Prune(cmd.Context(), prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "pruned %d runs\n", n)
				return nil
			}

			runs, err := st.List(cmd.Context(), store.Filter{
				Path:       path,
				FailedOnly: failed,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(w, "no runs recorded")
				return nil
			}

			fmt.Fprintf(w, "%-8s  %-19s  %6s  %6s  %s\n", "ID", "CREATED", "TOKENS", "ERRORS", "PATH")
			for _, r := range runs {
				fmt.Fprintf(w, "%-8s  %-19s  %6d  %6d  %s\n",
					shortID(r.ID), r.CreatedAt.Local().Format(time.DateTime), r.TokenCount, r.DiagCount, r.Path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	f.StringVar(&path, "path", "", "only runs of this file")
	f.BoolVar(&failed, "failed", false, "only runs with diagnostics")
	f.DurationVar(&prune, "prune", 0, "delete runs older than this duration and exit")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newShowCmd(c *cli) *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run",
		Long:  "Show a recorded run. Any unique prefix of the run ID is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch section {
			case "all", "tokens", "tree", "diagnostics", "memory":
			default:
				return fmt.Errorf("unknown section %q", section)
			}

			st, err := store.Open(c.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			r, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return showRun(cmd.OutOrStdout(), r, section)
		},
	}
	cmd.Flags().StringVarP(&section, "section", "s", "all", "section to show: all, tokens, tree, diagnostics, memory")
	return cmd
}

func showRun(w io.Writer, r *store.Run, section string) error {
	all := section == "all"
	if all {
		fmt.Fprintf(w, "id:      %s\n", r.ID)
		fmt.Fprintf(w, "path:    %s\n", r.Path)
		fmt.Fprintf(w, "source:  %s\n", r.SourceHash)
		fmt.Fprintf(w, "created: %s\n", r.CreatedAt.Local().Format(time.DateTime))
		fmt.Fprintf(w, "tokens:  %d\n", r.TokenCount)
		fmt.Fprintf(w, "errors:  %d\n", r.DiagCount)
	}

	if all || section == "tokens" {
		toks, err := interchange.DecodeTokens(strings.NewReader(r.Tokens), interchange.JSON, r.Path)
		if err != nil {
			return fmt.Errorf("decode tokens: %w", err)
		}
		heading(w, all, "tokens")
		render.Tokens(w, toks)
	}

	if (all || section == "tree") && r.Tree != "" {
		prog, err := interchange.DecodeTree(strings.NewReader(r.Tree), interchange.JSON)
		if err != nil {
			return fmt.Errorf("decode tree: %w", err)
		}
		heading(w, all, "tree")
		syntax.Fprint(w, prog)
	}

	if all || section == "diagnostics" {
		diags, err := interchange.DecodeDiagnostics(strings.NewReader(r.Diagnostics), interchange.JSON)
		if err != nil {
			return fmt.Errorf("decode diagnostics: %w", err)
		}
		if len(diags) > 0 {
			heading(w, all, "diagnostics")
			render.Diagnostics(w, diags)
		}
	}

	if (all || section == "memory") && r.Memory != "" {
		var vars snapshot
		if err := json.Unmarshal([]byte(r.Memory), &vars); err != nil {
			return fmt.Errorf("decode memory: %w", err)
		}
		heading(w, all, "memory")
		render.Memory(w, vars)
	}
	return nil
}

func heading(w io.Writer, show bool, name string) {
	if show {
		fmt.Fprintf(w, "\n%s:\n", name)
	}
}

// snapshot is stored memory. Declaration order is not recorded, so
// names are listed alphabetically.
type snapshot map[string]int64

func (s snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s snapshot) Get(name string) (int64, bool) {
	v, ok := s[name]
	return v, ok
}
