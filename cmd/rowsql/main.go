// Package main is rowstore's CLI, rebuilt on cobra subcommands from the
// teacher's single flag-driven entry point (cmd/sqlparser/main.go):
// exec runs statements for effect, query prints a SELECT's result set,
// and repl opens an interactive session, all against one in-memory
// Engine.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Chahine-tech/rowstore"
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/config"
)

func main() {
	var verbose bool
	var seedFile string

	rootCmd := &cobra.Command{
		Use:   "rowsql",
		Short: "An embedded, in-memory SQL engine",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "YAML file seeding initial table schemas")

	rootCmd.AddCommand(execCmd(&verbose, &seedFile))
	rootCmd.AddCommand(queryCmd(&verbose, &seedFile))
	rootCmd.AddCommand(replCmd(&verbose, &seedFile))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func newEngine(verbose bool, seedFile string) (*rowstore.Engine, *zap.Logger, error) {
	log := newLogger(verbose)
	e := rowstore.New(log)
	if seedFile != "" {
		seed, err := config.LoadFile(seedFile)
		if err != nil {
			return nil, log, fmt.Errorf("loading seed file: %w", err)
		}
		if err := e.Seed(seed); err != nil {
			return nil, log, fmt.Errorf("applying seed file: %w", err)
		}
	}
	return e, log, nil
}

func execCmd(verbose *bool, seedFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run one or more statements for their effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, log, err := newEngine(*verbose, *seedFile)
			if err != nil {
				return err
			}
			defer log.Sync()
			status, err := e.Execute(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("status: %d\n", status)
			return nil
		},
	}
}

func queryCmd(verbose *bool, seedFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run one or more SELECT statements and print the last result set",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, log, err := newEngine(*verbose, *seedFile)
			if err != nil {
				return err
			}
			defer log.Sync()
			rows, err := e.Query(args[0])
			if err != nil {
				return err
			}
			printRows(rows)
			return nil
		},
	}
}

func replCmd(verbose *bool, seedFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session reading statements from stdin",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, log, err := newEngine(*verbose, *seedFile)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runRepl(e)
		},
	}
}

func runRepl(e *rowstore.Engine) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("rowsql> ready (blank line to exit)")
	for {
		fmt.Print("rowsql> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil
		}
		if strings.HasPrefix(strings.ToUpper(line), "SELECT") {
			rows, err := e.Query(line)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printRows(rows)
			continue
		}
		status, err := e.Execute(line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Printf("status: %d\n", status)
	}
}

// printRows prints a result set as a simple column-sorted table, one
// row per line, column names sorted for deterministic output across
// runs (Record is an unordered map).
func printRows(rows ast.RecordSet) {
	if len(rows) == 0 {
		fmt.Println("(0 rows)")
		return
	}
	cols := make([]string, 0, len(rows[0]))
	for c := range rows[0] {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	fmt.Println(strings.Join(cols, "\t"))
	for _, row := range rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = row[c].CanonicalText()
		}
		fmt.Println(strings.Join(vals, "\t"))
	}
	fmt.Printf("(%d rows)\n", len(rows))
}
