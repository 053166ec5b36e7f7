// Command axon is the AXON language CLI: check, compile, run, and
// trace an .axon cognitive-pipeline source file.
package main

import (
	"fmt"
	"os"

	"github.com/Bemarking/axon-ai/pkg/config"
	"github.com/spf13/cobra"
)

// version is the axon-lang release this binary implements.
const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "axon",
	Short: "AXON — a programming language for AI cognition",
	Long:  "axon — compile and run .axon cognitive-pipeline programs against Anthropic, Gemini, OpenAI, or Ollama.",
}

func main() {
	config.LoadDotEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show axon-lang version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("axon-lang %s\n", version)
	},
}
