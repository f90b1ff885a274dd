package main

import (
	"fmt"
	"strings"

	"github.com/arloliu/go-stage/config"
	"github.com/spf13/cobra"
)

var (
	cmdSend = &cobra.Command{
		Use:   "send <port> <command...>",
		Short: "Send one ASCII command line and print the reply",
		Long:  `The command is given as it would be typed on a terminal, e.g. "/1 0 get pos".`,
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSend,
	}
)

var sendNoReply bool

func init() {
	rootCmd.AddCommand(cmdSend)
	cmdSend.Flags().BoolVarP(&sendNoReply, "no-reply", "n", false, "Do not wait for a reply")
}

func runSend(cmd *cobra.Command, args []string) error {
	conf, err := config.ReadConfig(confPath)
	if err != nil {
		return err
	}

	link, err := openASCIILink(conf, args[0], newLogger())
	if err != nil {
		return err
	}
	defer link.Close()

	if err := link.WriteRaw(strings.Join(args[1:], " ")); err != nil {
		return err
	}

	if sendNoReply {
		return nil
	}

	reply, err := link.Read()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.String())

	return nil
}
