package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modpm/internal/app"
)

type distOptions struct {
	Directory string
	OutputDir string
}

func newDistCommand() *cobra.Command {
	opts := distOptions{}
	cmd := &cobra.Command{
		Use:   "dist",
		Short: "Pack the current package into a distribution archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDist(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Directory, "directory", "C", "", "Package directory (default current)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Output directory (default <directory>/dist)")
	return cmd
}

func runDist(ctx context.Context, opts distOptions) error {
	service := newAppService()
	result, err := service.Dist(ctx, app.DistRequest{
		Directory: opts.Directory,
		OutputDir: opts.OutputDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("packed: %s\n", result.ArchivePath)
	return nil
}
