package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/fsutil"
)

// DefaultMaxFixPasses bounds the fix loop. A fix skipped because it
// overlapped another is retried on the next pass against the new content.
const DefaultMaxFixPasses = config.DefaultMaxPasses

// Pipeline error types for categorization.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrParseFailure     = errors.New("parse failure")
	ErrWriteFailure     = errors.New("write failure")
)

// PipelineResult contains the result of processing a single file.
type PipelineResult struct {
	// FileResult holds diagnostics from the final pass.
	*FileResult

	// Path is the file path that was processed.
	Path string

	// Stamp is the file state before processing (nil for in-memory content).
	Stamp *fsutil.Stamp

	// Modified is true if the content was changed.
	Modified bool

	// ModifiedContent is the content after all passes (nil if unmodified).
	ModifiedContent []byte

	// Diff is the unified diff in dry-run mode.
	Diff *fix.Diff

	// Skipped is true if the file was left untouched on disk.
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// RejectedPass is set when a pass was discarded because its edits made
	// the file fail to parse.
	RejectedPass bool

	// BackupCreated is true if a backup was created for this file.
	BackupCreated bool

	// Written is true if the file was written to disk.
	Written bool

	// FixPasses is the number of passes whose edits were kept.
	FixPasses int

	// FixesApplied is the number of proposals applied across all passes.
	FixesApplied int

	// TotalEditsApplied is the number of text edits applied across all passes.
	TotalEditsApplied int

	// Undo holds the inverse edit set of each kept pass. Applying them from
	// last to first restores the original content.
	Undo []*fix.MultiEdit
}

// Summary returns a short description of the result.
func (pr *PipelineResult) Summary() string {
	switch {
	case pr.Skipped:
		return "skipped: " + pr.SkipReason
	case pr.Written && pr.BackupCreated:
		return "fixed (backup created)"
	case pr.Written:
		return "fixed"
	case pr.Modified:
		return "changes pending"
	case pr.FileResult != nil && pr.HasIssues():
		return "issues found"
	default:
		return "ok"
	}
}

// Restore applies the undo sets to content produced by the pipeline.
func (pr *PipelineResult) Restore(content []byte) ([]byte, error) {
	out := content
	for i := len(pr.Undo) - 1; i >= 0; i-- {
		var err error
		if out, err = pr.Undo[i].Apply(out); err != nil {
			return nil, fmt.Errorf("undo pass %d: %w", i+1, err)
		}
	}
	return out, nil
}

// PipelineOptions controls pipeline behavior.
type PipelineOptions struct {
	// Fix enables fix mode.
	Fix bool

	// DryRun generates diffs without writing files.
	DryRun bool

	// Backup writes a sidecar copy of the original before the first write.
	Backup bool

	// StrictRaceDetection compares content hashes, not just size and
	// modification time, before writing.
	StrictRaceDetection bool

	// ReParseAfterFix re-parses every pass's output and discards the pass
	// if it added syntax errors.
	ReParseAfterFix bool

	// MaxFixPasses limits the number of fix passes. Zero means
	// DefaultMaxFixPasses.
	MaxFixPasses int
}

// DefaultPipelineOptions returns the defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		StrictRaceDetection: true,
		ReParseAfterFix:     true,
		MaxFixPasses:        DefaultMaxFixPasses,
	}
}

// PipelineOptionsFromConfig creates PipelineOptions from config.Config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	opts := DefaultPipelineOptions()
	if cfg == nil {
		return opts
	}
	opts.Fix = cfg.Fix
	opts.DryRun = cfg.DryRun
	opts.Backup = cfg.BackupsEnabled()
	if cfg.MaxPasses > 0 {
		opts.MaxFixPasses = cfg.MaxPasses
	}
	return opts
}

// Pipeline orchestrates the safe processing of a single file.
type Pipeline struct {
	// Engine runs parsing, analysis and rules.
	Engine *Engine
}

// NewPipeline creates a pipeline around engine.
func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// ProcessFile runs the full pipeline for a single file:
//  1. Read and stamp the original file.
//  2. Fix loop: check, apply the merged fixes in memory, re-parse, repeat
//     until no fix applies or the pass limit is reached.
//  3. Generate a diff in dry-run mode.
//  4. Verify the file did not change on disk, back it up, and replace it
//     atomically.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	path string,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	original, stamp, err := fsutil.Read(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.run(ctx, path, original, cfg, opts)
	if err != nil {
		return nil, err
	}
	result.Stamp = stamp
	if !result.Modified || opts.DryRun {
		return result, nil
	}

	logger := logging.FromContext(ctx)

	changed, err := stamp.Changed(ctx, opts.StrictRaceDetection)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if changed {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	if opts.Backup {
		created, err := fsutil.Backup(ctx, stamp, original)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	written, err := fsutil.Replace(ctx, stamp, result.ModifiedContent)
	if errors.Is(err, fsutil.ErrChanged) {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = written
	logger.Debug("file fixed", logging.FieldPass, result.FixPasses, logging.FieldEdits, result.TotalEditsApplied)

	return result, nil
}

// ProcessContent runs the pipeline on in-memory content without file I/O.
// In dry-run mode the result carries a diff.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	return p.run(ctx, path, content, cfg, opts)
}

func (p *Pipeline) run(
	ctx context.Context,
	path string,
	original []byte,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	logger := logging.FromContext(ctx)
	result := &PipelineResult{Path: path}

	maxPasses := opts.MaxFixPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxFixPasses
	}

	content := original
	for pass := 1; ; pass++ {
		fileResult, err := p.Engine.CheckFile(ctx, path, content, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("processing cancelled: %w", err)
			}
			return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
		}
		result.FileResult = fileResult

		if !opts.Fix || !fileResult.HasFixes() || pass > maxPasses {
			break
		}

		next := fix.ApplyEdits(content, fileResult.Edits)
		if opts.ReParseAfterFix && p.addsSyntaxErrors(ctx, path, fileResult, next) {
			result.RejectedPass = true
			logger.Debug("fix pass rejected", logging.FieldPass, pass)
			break
		}

		undo, err := fix.NewMultiEdit(fileResult.Edits...).Inverse(content)
		if err != nil {
			return nil, fmt.Errorf("invert pass %d: %w", pass, err)
		}
		result.Undo = append(result.Undo, undo)

		content = next
		result.FixPasses++
		result.FixesApplied += len(fileResult.Applied)
		result.TotalEditsApplied += len(fileResult.Edits)
		result.Modified = true
	}

	if !result.Modified {
		return result, nil
	}
	result.ModifiedContent = content
	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, original, content)
	}
	return result, nil
}

// addsSyntaxErrors reports whether next parses with more syntax errors than
// the content behind fr.
func (p *Pipeline) addsSyntaxErrors(ctx context.Context, path string, fr *FileResult, next []byte) bool {
	snap, err := p.Engine.Parser.Parse(ctx, path, next)
	if err != nil {
		return true
	}
	return len(snap.Errors) > len(fr.Snapshot.Errors)
}

// categorizeError wraps an error with the matching pipeline error type.
func categorizeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fsutil.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrWriteFailure)
}
