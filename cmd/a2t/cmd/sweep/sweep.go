package sweep

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"hy-whisper/internal/app/common"
	"hy-whisper/internal/app/storage/scratch"
	"hy-whisper/internal/config"
)

var configFile string

// Cmd represents the sweep command
var Cmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove leftover uploads from the scratch directory",
	Long: `Remove every regular file from the uploads directory. The server does this
on shutdown; run it by hand after a crash. Do not run it against a directory a
live server is using.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile})
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		if verbose {
			if logger, err = common.NewLogger(true); err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
		}

		manager, err := scratch.NewManager(cfg.UploadsDir, cfg.MaxFileSize, logger)
		if err != nil {
			return err
		}

		removed := manager.Sweep()
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s) from %s\n", removed, manager.Dir())
		return err
	},
}

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
}
