package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/users333/faculty-registry/internal/bootstrap"
	"github.com/users333/faculty-registry/internal/config"
)

type globalOptions struct {
	configPath string
	dataDir    string
	backend    string
}

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "registry",
		Short:        "Faculty and student registry",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return runShell(c, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to the YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the data files")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: text, sqlite or postgres")

	cmd.AddCommand(
		shellCmd(opts),
		facultyCmd(opts),
		studentCmd(opts),
		seedCmd(opts),
		versionCmd(),
	)
	return cmd
}

// withApp builds the dependencies, runs fn and always closes the registry.
func withApp(c *cobra.Command, opts *globalOptions, fn func(ctx context.Context, deps *bootstrap.Dependencies) error) (err error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath, bootstrap.Overrides{
		DataDir: opts.dataDir,
		Backend: opts.backend,
	}, c.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := deps.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, deps)
}
