package main

import (
	"fmt"
	"strconv"

	"github.com/arloliu/go-stage/binary"
	"github.com/arloliu/go-stage/config"
	"github.com/spf13/cobra"
)

var (
	cmdBinary = &cobra.Command{
		Use:   "binary <port> <device> <command> [data]",
		Short: "Send one binary frame and print the reply frame",
		Args:  cobra.RangeArgs(3, 4),
		RunE:  runBinary,
	}
)

func init() {
	rootCmd.AddCommand(cmdBinary)
}

func runBinary(cmd *cobra.Command, args []string) error {
	device, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid device %q: %w", args[1], err)
	}

	number, err := strconv.ParseUint(args[2], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid command %q: %w", args[2], err)
	}

	var data int64
	if len(args) == 4 {
		if data, err = strconv.ParseInt(args[3], 10, 32); err != nil {
			return fmt.Errorf("invalid data %q: %w", args[3], err)
		}
	}

	conf, err := config.ReadConfig(confPath)
	if err != nil {
		return err
	}

	link, err := openBinaryLink(conf, args[0], newLogger())
	if err != nil {
		return err
	}
	defer link.Close()

	reply, err := link.Request(binary.NewCommand(uint8(device), uint8(number), int32(data)))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.String())

	if reply.IsError() {
		return fmt.Errorf("device %d returned error code %d", reply.Device, reply.Data)
	}

	return nil
}
