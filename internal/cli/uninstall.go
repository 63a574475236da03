package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modpm/internal/app"
)

type uninstallOptions struct {
	Global bool
	Root   bool
	Force  bool
}

func newUninstallCommand() *cobra.Command {
	opts := uninstallOptions{}
	cmd := &cobra.Command{
		Use:   "uninstall <name>",
		Short: "Remove an installed package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Global, "global", "g", false, "Uninstall from the per-user location")
	cmd.Flags().BoolVar(&opts.Root, "root", false, "Uninstall from the system location")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Remove the directory even without a manifest")
	return cmd
}

func runUninstall(ctx context.Context, name string, opts uninstallOptions) error {
	service := newAppService()
	result, err := service.Uninstall(ctx, app.UninstallRequest{
		Name:   name,
		Global: opts.Global,
		Root:   opts.Root,
		Force:  opts.Force,
	})
	if err != nil {
		return err
	}
	fmt.Printf("uninstalled: %s\n", result.Name)
	return nil
}
