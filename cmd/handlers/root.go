package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blogforge/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blogforge",
	Short: "Blogforge researches, drafts, scores, and iteratively improves blog posts.",
	Long: `Blogforge is an AI blog writing pipeline.

Given a topic it gathers research, plans an outline, drafts a post, scores
the draft against a 100-point rubric, and rewrites it until the score clears
the configured threshold or the iteration budget runs out.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blogforge.yaml)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewScoreCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewWorkCmd())
}

// initConfig reads the config file and environment before any command runs.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
