package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clipideas",
		Short:        "Suggest short-form clip ideas for YouTube videos",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the clip ideas HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serve.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")

	ideas := &cobra.Command{
		Use:   "ideas <videoId|url>",
		Short: "Generate clip ideas for one video and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdeas(cmd, args[0])
		},
	}
	ideas.Flags().String("lang", "", "Preferred caption language, e.g. en or pt-BR")
	ideas.Flags().Bool("copy", false, "Copy the JSON result to the clipboard")
	ideas.Flags().String("out", "", "Also write the result into this directory")

	root.AddCommand(serve, ideas)
	return root
}
