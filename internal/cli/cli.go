// Package cli assembles the slice-align command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"slice-align/internal/config"
	"slice-align/internal/version"
)

// Root carries the shared state the subcommands need.
type Root struct {
	Log *slog.Logger
	Cfg config.Config
}

// NewRootCmd creates the root cobra command.
func NewRootCmd(log *slog.Logger) *cobra.Command {
	root := &Root{Log: log, Cfg: config.Default()}

	var cfgPath string
	rootCmd := &cobra.Command{
		Use:   "slice-align",
		Short: "Robust landmark-based registration of microscopy slice images",
		Long: `slice-align fits a geometric transform (translation, rigid, similarity,
affine, or moving least squares) to weighted point correspondences between a
pair of images, rejecting outlier matches with a randomized consensus search.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				return nil
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			root.Cfg = cfg
			log.Debug("loaded config", "path", cfgPath)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file")

	rootCmd.AddCommand(newFitCmd(root))
	rootCmd.AddCommand(newApplyCmd(root))
	rootCmd.AddCommand(newCheckCmd(root))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slice-align %s (commit %s, built %s)\n",
				version.Version, version.GitCommit, version.BuildTime)
		},
	}
}
