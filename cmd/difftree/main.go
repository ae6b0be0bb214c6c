// difftree compares two directory snapshots as content-addressed
// trees and prints the paths that changed between them.
package main

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-difftree/difftree"
	"github.com/go-difftree/difftree/plumbing/cache"
	"github.com/go-difftree/difftree/plumbing/format/pathspec"
	"github.com/go-difftree/difftree/storage/memory"
	"github.com/go-difftree/difftree/utils/fstree"
)

type config struct {
	Recursive        bool `yaml:"recursive"`
	TreeInRecursive  bool `yaml:"tree_in_recursive"`
	FindCopiesHarder bool `yaml:"find_copies_harder"`
	RenameScore      int  `yaml:"rename_score"`
	BreakScore       int  `yaml:"break_score"`
	Patch            bool `yaml:"patch"`
	MaxChanges       int  `yaml:"max_changes"`
}

var (
	cfg        config
	cfgFile    string
	followPath string
	paths      []string
)

var rootCmd = &cobra.Command{
	Use:   "difftree <before-dir> <after-dir>",
	Short: "Compare two directory snapshots as content-addressed trees",
	Long: `difftree snapshots both directories into an in-memory
content-addressed store and reports the paths that differ, in the
familiar one-letter status format (A/D/M/R/C).`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&cfg.Recursive, "recursive", "r", true, "descend into changed directories")
	flags.BoolVarP(&cfg.TreeInRecursive, "tree-in-recursive", "t", false, "also report changed directories themselves when recursing")
	flags.BoolVar(&cfg.FindCopiesHarder, "find-copies-harder", false, "consider unmodified files as copy sources")
	flags.IntVar(&cfg.RenameScore, "rename-score", 0, "minimum similarity (0-100) to report a rename")
	flags.IntVar(&cfg.BreakScore, "break-score", 0, "split rewrites below this similarity into delete/add")
	flags.BoolVarP(&cfg.Patch, "patch", "p", false, "print content diffs for modified files")
	flags.IntVar(&cfg.MaxChanges, "max-changes", 0, "stop after reporting this many changes (0 means no limit)")
	flags.StringVar(&followPath, "follow", "", "report the historical name of this freshly added path")
	flags.StringArrayVar(&paths, "path", nil, "restrict the diff to this path (repeatable)")
	flags.StringVarP(&cfgFile, "config", "c", "", "YAML file with default options")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the optional YAML config under the flag values:
// whatever the flags left at zero is filled in from the file.
func loadConfig() error {
	if cfgFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return err
	}

	var file config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", cfgFile, err)
	}

	return mergo.Merge(&cfg, file)
}

func run(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	st := memory.NewStorage()

	before, err := fstree.Snapshot(osfs.New(args[0]), st)
	if err != nil {
		return err
	}
	after, err := fstree.Snapshot(osfs.New(args[1]), st)
	if err != nil {
		return err
	}

	patterns := paths
	follow := followPath != ""
	if follow {
		patterns = []string{followPath}
	}
	ps, err := pathspec.Compile(patterns, pathspec.Options{Literal: follow})
	if err != nil {
		return err
	}

	p := &printer{out: cmd.OutOrStdout(), st: st, patch: cfg.Patch}

	opts := &difftree.Options{
		Recursive:        cfg.Recursive,
		TreeInRecursive:  cfg.TreeInRecursive,
		FindCopiesHarder: cfg.FindCopiesHarder,
		FollowRenames:    follow,
		RenameScore:      cfg.RenameScore,
		BreakScore:       cfg.BreakScore,
		Pathspec:         ps,
		Blobs:            st,
	}
	resolver := cache.NewTrees(st, 0)

	if !follow {
		// Stream the changes as they are found, quitting the traversal
		// once enough have been printed.
		opts.OnChange = p.change
		opts.OnAddRemove = p.addRemove
		if cfg.MaxChanges > 0 {
			opts.EarlyQuit = func() bool { return p.printed >= cfg.MaxChanges }
		}

		_, err := difftree.DiffTree(resolver, before, after, "", opts)
		return err
	}

	// Follow mode queues its records, so the cap applies when printing.
	res, err := difftree.DiffTree(resolver, before, after, "", opts)
	if err != nil {
		return err
	}
	for _, c := range res.Changes {
		if cfg.MaxChanges > 0 && p.printed >= cfg.MaxChanges {
			break
		}
		if err := p.record(c); err != nil {
			return err
		}
	}

	return nil
}
