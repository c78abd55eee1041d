package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/fsutil"
)

func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Restore files from the backups written by --fix",
		Long: `Move the backups written by "flowfix check --fix" back over the fixed
files. Directories are searched recursively for backups. With no paths, the
current directory is searched.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			return runRestore(ctx, args)
		},
	}
}

func runRestore(ctx context.Context, paths []string) error {
	logger := logging.NewInteractive()

	var targets []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			targets = append(targets, path)
			continue
		}
		found, err := fsutil.FindBackups(path)
		if err != nil {
			return err
		}
		targets = append(targets, found...)
	}

	var errs []error
	restored := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("restore cancelled: %w", err)
		}
		ok, err := fsutil.Restore(ctx, target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			restored++
			logger.Info("restored", logging.FieldPath, target)
		}
	}

	if restored == 0 && len(errs) == 0 {
		logger.Info("no backups found")
	}
	return errors.Join(errs...)
}
