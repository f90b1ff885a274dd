package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cmdRun = &cobra.Command{
		Use:   "run <script>",
		Short: "Run stagectl commands from a file, one per line",
		Long: `Each line holds the arguments of one stagectl command, split with shell
quoting rules, e.g.:

	lockstep home gantry
	send bench "/1 0 storage set note O'Brien"

Blank lines and lines starting with '#' are skipped. The first failing line
stops the script.`,
		Args: cobra.ExactArgs(1),
	}
)

func init() {
	// RunE is set here: runScriptLine refers to cmdRun, so a static
	// initializer would form an initialization cycle.
	cmdRun.RunE = runScript
	rootCmd.AddCommand(cmdRun)
}

func runScript(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", args[0], lineNo, err)
		}

		if err := runScriptLine(tokens); err != nil {
			return fmt.Errorf("%s:%d: %w", args[0], lineNo, err)
		}
	}

	return scanner.Err()
}

func runScriptLine(tokens []string) error {
	target, rest, err := rootCmd.Find(tokens)
	if err != nil {
		return err
	}

	if target == cmdRun {
		return errors.New("run cannot be nested")
	}
	if target.RunE == nil {
		return fmt.Errorf("%q is not a runnable command", strings.Join(tokens, " "))
	}

	// flags set by a previous line must not leak into this one
	target.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	if err := target.ParseFlags(rest); err != nil {
		return err
	}

	cmdArgs := target.Flags().Args()
	if err := target.ValidateArgs(cmdArgs); err != nil {
		return err
	}

	return target.RunE(target, cmdArgs)
}
