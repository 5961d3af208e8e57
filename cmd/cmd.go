package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreamerjackson/browser/cmd/run"
	"github.com/dreamerjackson/browser/spider"
	"github.com/dreamerjackson/browser/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "list the registered site tasks.",
	Long:  "list the registered site tasks, their rules and the fields they store.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range spider.TaskStore.List {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, t.URL)
			for _, r := range t.Rule.Rules {
				fmt.Fprintf(cmd.OutOrStdout(), "\t%s\t%s\n", r.Name, strings.Join(r.ItemFields, ","))
			}
		}
	},
}

func Execute() error {
	var rootCmd = &cobra.Command{Use: "browser", SilenceUsage: true}
	rootCmd.AddCommand(run.RunCmd, tasksCmd, versionCmd)
	return rootCmd.ExecuteContext(context.Background())
}
