package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modpm/internal/app"
)

type installOptions struct {
	Global          bool
	Root            bool
	Upgrade         bool
	Develop         bool
	Dev             bool
	Recursive       bool
	Internal        bool
	Pure            bool
	IgnoreInstalled bool
	Verbose         bool
	RuntimeVersion  string
	PipArgs         []string
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install [specs...]",
		Short: "Install packages or the current package's dependencies",
		Long: `Install one or more packages given as requirement specifiers
(name@selector, git+<url>, or a filesystem path), or, with no
arguments, the dependencies of the package in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Global, "global", "g", false, "Install into the per-user location")
	cmd.Flags().BoolVar(&opts.Root, "root", false, "Install into the system location")
	cmd.Flags().BoolVarP(&opts.Upgrade, "upgrade", "U", false, "Replace already-installed packages")
	cmd.Flags().BoolVarP(&opts.Develop, "develop", "e", false, "Link directory installs instead of copying")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Also install dev dependencies")
	cmd.Flags().BoolVar(&opts.Recursive, "recursive", false, "Re-verify dependencies of already-installed packages")
	cmd.Flags().BoolVar(&opts.Internal, "internal", false, "Install into the enclosing package's nested scope")
	cmd.Flags().BoolVar(&opts.Pure, "pure", false, "Skip entry-point script generation")
	cmd.Flags().BoolVar(&opts.IgnoreInstalled, "pip-ignore-installed", false, "Pass --ignore-installed to the python installer")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose python installer output")
	cmd.Flags().StringVar(&opts.RuntimeVersion, "runtime-version", "", "Interpreter version for versioned entry scripts")
	cmd.Flags().StringSliceVar(&opts.PipArgs, "pip-args", nil, "Extra arguments for the python installer")
	_ = viper.BindPFlag("runtime_version", cmd.Flags().Lookup("runtime-version"))
	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, specs []string, opts installOptions) error {
	service := newAppService()
	result, err := service.Install(ctx, app.InstallRequest{
		Specs:           specs,
		Global:          opts.Global,
		Root:            opts.Root,
		Upgrade:         opts.Upgrade,
		Develop:         opts.Develop,
		Dev:             opts.Dev,
		Recursive:       opts.Recursive,
		Internal:        opts.Internal,
		Pure:            opts.Pure,
		IgnoreInstalled: opts.IgnoreInstalled,
		Verbose:         opts.Verbose,
		RuntimeVersion:  resolveString(cmd, opts.RuntimeVersion, "runtime_version", "runtime-version"),
		PipArgs:         opts.PipArgs,
	})
	if err != nil {
		return err
	}
	for _, info := range result.Installed {
		fmt.Printf("installed: %s@%s (%s)\n", info.Name, info.Version, result.Location)
	}
	if len(result.Installed) == 0 {
		fmt.Printf("dependencies installed (%s)\n", result.Location)
	}
	return nil
}
