// Command cypherdb-cli is the interactive and scriptable front end:
// cobra command tree (repl/query/load), adapted from the teacher's
// bufio.Scanner REPL loop — its per-line dispatch becomes one cobra
// command's RunE, and the loop itself moves into the "repl" subcommand.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cypherdb/cypherdb"
	"github.com/cypherdb/cypherdb/internal/cylog"
	"github.com/cypherdb/cypherdb/internal/datasets"
)

func main() {
	root := &cobra.Command{
		Use:   "cypherdb",
		Short: "Embedded openCypher graph database command-line tool",
	}
	var dbPath string
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to a durable graph file (empty = in-memory)")

	root.AddCommand(newReplCmd(&dbPath))
	root.AddCommand(newQueryCmd(&dbPath))
	root.AddCommand(newLoadCmd(&dbPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newReplCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive Cypher REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := cypherdb.Open(*dbPath)
			if err != nil {
				return err
			}
			defer h.Close()
			return runRepl(cmd.Context(), h)
		},
	}
}

func newQueryCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "query <cypher text>",
		Short: "Run a single Cypher statement and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := cypherdb.Open(*dbPath)
			if err != nil {
				return err
			}
			defer h.Close()
			rs, err := h.Execute(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			printResultSet(rs)
			return nil
		},
	}
}

func newLoadCmd(dbPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a dataset file into the graph (csv, cypher, json_graph, graphml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := cypherdb.Open(*dbPath)
			if err != nil {
				return err
			}
			defer h.Close()
			store, err := cypherdb.StoreOf(h)
			if err != nil {
				return err
			}
			if err := datasets.Load(store, args[0], format); err != nil {
				return err
			}
			if err := h.Sync(); err != nil {
				return err
			}
			fmt.Printf("loaded %s as %s\n", args[0], format)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "loader format: csv, cypher, json_graph, graphml")
	return cmd
}

func runRepl(ctx context.Context, h *cypherdb.Handle) error {
	fmt.Println("cypherdb — embedded openCypher graph engine")
	fmt.Println(`Type a Cypher statement, or "exit"/"quit" to leave.`)

	reader := newLineReader(os.Stdin)
	for {
		fmt.Print("cypher> ")
		line, ok := reader.readLine()
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		rs, err := h.Execute(ctx, line, nil)
		if err != nil {
			cylog.Std().WithError(err).Error("query failed")
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printResultSet(rs)
	}
}
