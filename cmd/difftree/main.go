package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"difftree/internal/compare"
	"difftree/internal/config"
	"difftree/internal/fserr"
	"difftree/internal/hash"
	"difftree/internal/logging"
	"difftree/internal/progress"
	"difftree/internal/report"
	"difftree/internal/snapshot"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInvalidRoot = 255
)

type options struct {
	dir1        string
	dir2        string
	sha512      bool
	algorithm   hash.Algorithm
	blockSize   config.ByteSize
	reverse     bool
	list        bool
	exclude     []string
	workers     int
	strictTypes bool
	progress    bool
	configPath  string
	verbose     int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{
		algorithm: hash.DefaultAlgorithm,
		blockSize: config.ByteSize(hash.DefaultChunkSize),
	}

	cmd := &cobra.Command{
		Use:   "difftree [flags] [dir1 dir2]",
		Short: "list the differences in files between two directories",
		Long: `List the differences in files between two directories.

Directories and files are classified as exclusive to dir1, common to both, or
missing from dir1. Files common to both trees are hashed on each side and
reported as diff_file when their checksums differ.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
			case 2:
				if opts.dir1 != "" || opts.dir2 != "" {
					return &exitError{exitUsage, errors.New("give directories either as arguments or with --dir1/--dir2, not both")}
				}
				opts.dir1, opts.dir2 = args[0], args[1]
			default:
				return &exitError{exitUsage, errors.New("expected two directories")}
			}
			if opts.dir1 == "" || opts.dir2 == "" {
				return &exitError{exitUsage, errors.New("both --dir1 and --dir2 are required")}
			}
			return run(cmd.Context(), cmd.Flags(), opts, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{exitUsage, err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.dir1, "dir1", "1", "", "first directory")
	flags.StringVarP(&opts.dir2, "dir2", "2", "", "second directory")
	flags.BoolVarP(&opts.sha512, "sha512", "5", false, "use sha2-512 instead of sha2-256")
	flags.VarP(&opts.algorithm, "algorithm", "a", "hash algorithm: sha256, sha512, blake3 or xxh64")
	flags.VarP(&opts.blockSize, "block-size", "b", "block size to hash files, bytes or 8M/512K; non-positive means default")
	flags.BoolVarP(&opts.reverse, "reverse", "r", false, "reverse comparison")
	flags.BoolVarP(&opts.list, "list", "l", false, "also list every dir and file of each tree")
	flags.StringSliceVarP(&opts.exclude, "exclude", "x", nil, "exclude pattern, e.g. '*.tmp' or '.git/' (repeatable)")
	flags.IntVarP(&opts.workers, "workers", "w", 1, "number of concurrent hash workers")
	flags.BoolVar(&opts.strictTypes, "strict-types", false, "report paths that are a directory on one side and a file on the other")
	flags.BoolVar(&opts.progress, "progress", false, "show hashing progress on stderr")
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "config file (.yaml or .ini)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "log to stderr: -v info, -vv debug")

	return cmd
}

// settings merges the config file with explicitly set flags.
func settings(flags *pflag.FlagSet, opts *options) (*config.Config, compare.Options, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, compare.Options{}, fmt.Errorf("failed to load config: %w", err)
	}

	hashOpts, err := cfg.HashOptions()
	if err != nil {
		return nil, compare.Options{}, err
	}
	if flags.Changed("algorithm") {
		hashOpts.Algorithm = opts.algorithm
	}
	if opts.sha512 {
		hashOpts.Algorithm = hash.SHA512
	}
	if flags.Changed("block-size") {
		hashOpts.ChunkSize = int(opts.blockSize)
	}

	if flags.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("strict-types") {
		cfg.StrictTypes = opts.strictTypes
	}
	if flags.Changed("progress") {
		cfg.Progress = opts.progress
	}

	return cfg, compare.Options{
		Hash:        hashOpts.Normalize(),
		Workers:     cfg.Workers,
		StrictTypes: cfg.StrictTypes,
	}, nil
}

func run(ctx context.Context, flags *pflag.FlagSet, opts *options, stdout, stderr io.Writer) error {
	logger := logging.New(stderr, opts.verbose)

	cfg, compareOpts, err := settings(flags, opts)
	if err != nil {
		return err
	}
	compareOpts.Logger = logger

	dir1, dir2 := opts.dir1, opts.dir2
	if opts.reverse {
		dir1, dir2 = dir2, dir1
	}

	// Both roots are checked before anything is walked.
	for _, dir := range []string{dir1, dir2} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return &exitError{exitInvalidRoot, fmt.Errorf("%s is not a directory", dir)}
		}
	}

	snapA, err := buildSnapshot(ctx, logger, dir1, cfg.Exclude)
	if err != nil {
		return err
	}
	snapB, err := buildSnapshot(ctx, logger, dir2, cfg.Exclude)
	if err != nil {
		return err
	}

	fpA, errA := snapA.Fingerprint()
	fpB, errB := snapB.Fingerprint()
	if errA == nil && errB == nil {
		logger.Debug("structure fingerprints", "a", fpA, "b", fpB)
		if fpA == fpB {
			logger.Info("directory structures are identical", "a", dir1, "b", dir2)
		}
	}

	var bar *progress.Bar
	if cfg.Progress {
		if f, ok := stderr.(*os.File); ok && !progress.IsTerminal(f) {
			logger.Debug("progress disabled, stderr is not a terminal")
		} else {
			bar = progress.New(stderr)
			compareOpts.Progress = bar
		}
	}

	logger.Info("comparing",
		"a", dir1,
		"b", dir2,
		"algorithm", compareOpts.Hash.Algorithm,
		"chunk_size", compareOpts.Hash.ChunkSize,
		"workers", compareOpts.Workers)

	result, err := compare.Compare(ctx, snapA, snapB, compareOpts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	return report.Write(stdout, snapA, snapB, result, report.Options{
		List:           opts.list,
		TypeMismatches: compareOpts.StrictTypes,
	})
}

func buildSnapshot(ctx context.Context, logger *slog.Logger, dir string, exclude []string) (*snapshot.Snapshot, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	// The walk treats a symlinked root as the directory it points to.
	if resolved, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = resolved
	}

	logger.Info("scanning directory", "root", dir, "path", absDir)

	snap, err := snapshot.Build(ctx, dir, osfs.New(absDir), exclude)
	if err != nil {
		return nil, err
	}

	logger.Debug("scanned directory", "root", dir, "dirs", snap.Dirs.Len(), "files", snap.Files.Len())
	return snap, nil
}

// execute runs the command and maps errors to exit codes.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	var pathErr *fserr.PathError
	switch {
	case errors.As(err, &exitErr):
		fmt.Fprintln(stderr, exitErr.Error())
		if exitErr.code == exitUsage {
			fmt.Fprintln(stderr, cmd.UsageString())
		}
		return exitErr.code
	case errors.As(err, &pathErr):
		fmt.Fprintln(stderr, pathErr.Error())
		return exitFailure
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
