// internal/commands/list_commands.go
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandEntry is one row of the 'list commands' output.
type commandEntry struct {
	Path  string
	Short string
}

// listCmd groups listing subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources",
}

// commandsCmd implements 'list commands', which prints every user-facing
// command path next to its short description.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printCommandTable(cmd.OutOrStdout(), walkCommands(rootCmd, "", ""))
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(listCmd)
}

// walkCommands flattens the tree below cmd depth-first. Help and shell
// completion commands are left out.
func walkCommands(cmd *cobra.Command, parentPath, indent string) []commandEntry {
	path := cmd.Name()
	if parentPath != "" {
		path = parentPath + " " + cmd.Name()
	}

	entries := []commandEntry{{Path: indent + path, Short: cmd.Short}}
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() || sub.Name() == "completion" {
			continue
		}
		entries = append(entries, walkCommands(sub, path, indent+"  ")...)
	}
	return entries
}

func printCommandTable(out io.Writer, entries []commandEntry) {
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Path))
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, e := range entries {
		fmt.Fprintf(out, "  %s%s%s\n", e.Path, strings.Repeat(" ", width-len(e.Path)+2), e.Short)
	}
}
