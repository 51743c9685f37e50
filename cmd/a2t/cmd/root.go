package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"hy-whisper/cmd/a2t/cmd/serve"
	"hy-whisper/cmd/a2t/cmd/sweep"
	"hy-whisper/cmd/a2t/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a2t",
	Short: "Armenian audio to text over HTTP",
	Long: `a2t serves a small HTTP API that accepts an audio upload and returns the
Armenian transcript produced by the OpenAI transcription API.
- Put OPENAI_API_KEY in .env (without it a demo transcriber answers)
- Run "a2t serve" and POST the file as the "audio" form field to /api/transcribe`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(sweep.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
