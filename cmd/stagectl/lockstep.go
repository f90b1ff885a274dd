package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/arloliu/go-stage/ascii"
	"github.com/arloliu/go-stage/config"
	"github.com/spf13/cobra"
)

var (
	cmdLockstep = &cobra.Command{
		Use:   "lockstep",
		Short: "Operate a configured lockstep group",
	}
)

// lockstepAction runs one operation against an opened group.
type lockstepAction func(out io.Writer, t *lockstepTarget, args []string) error

func init() {
	rootCmd.AddCommand(cmdLockstep)

	cmdLockstep.AddCommand(
		lockstepCommand("enable <group> [axis1 axis2]", "Set up the group with two axes", cobra.RangeArgs(1, 3), runLockstepEnable),
		lockstepCommand("disable <group>", "Tear the group down", cobra.ExactArgs(1), replyAction((*ascii.Lockstep).Disable)),
		lockstepCommand("home <group>", "Home the group and wait until idle", cobra.ExactArgs(1), replyAction((*ascii.Lockstep).Home)),
		lockstepCommand("move-abs <group> <position>", "Move to an absolute position and wait", cobra.ExactArgs(2), moveAction((*ascii.Lockstep).MoveAbs)),
		lockstepCommand("move-rel <group> <distance>", "Move by a relative distance and wait", cobra.ExactArgs(2), moveAction((*ascii.Lockstep).MoveRel)),
		lockstepCommand("move-vel <group> <velocity>", "Start moving at a constant velocity", cobra.ExactArgs(2), moveAction((*ascii.Lockstep).MoveVel)),
		lockstepCommand("stop <group>", "Stop the group and wait until idle", cobra.ExactArgs(1), replyAction((*ascii.Lockstep).Stop)),
		lockstepCommand("info <group>", "Print the group setup", cobra.ExactArgs(1), runLockstepInfo),
		lockstepCommand("status <group>", "Print IDLE or BUSY", cobra.ExactArgs(1), runLockstepStatus),
	)
}

func lockstepCommand(use, short string, args cobra.PositionalArgs, action lockstepAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.ReadConfig(confPath)
			if err != nil {
				return err
			}

			t, err := openLockstep(conf, args[0], newLogger())
			if err != nil {
				return err
			}
			defer t.Close()

			return action(cmd.OutOrStdout(), t, args[1:])
		},
	}
}

func replyAction(op func(*ascii.Lockstep) (ascii.Reply, error)) lockstepAction {
	return func(out io.Writer, t *lockstepTarget, _ []string) error {
		reply, err := op(t.group)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply.String())

		return nil
	}
}

func moveAction(op func(*ascii.Lockstep, int) (ascii.Reply, error)) lockstepAction {
	return func(out io.Writer, t *lockstepTarget, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[0], err)
		}

		reply, err := op(t.group, value)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply.String())

		return nil
	}
}

func runLockstepEnable(out io.Writer, t *lockstepTarget, args []string) error {
	var axis1, axis2 int

	switch {
	case len(args) == 2:
		var err error
		if axis1, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid axis %q: %w", args[0], err)
		}
		if axis2, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid axis %q: %w", args[1], err)
		}
	case len(args) == 0 && len(t.schema.Axes) == 2:
		axis1, axis2 = t.schema.Axes[0], t.schema.Axes[1]
	default:
		return errors.New("axes are neither given nor configured")
	}

	reply, err := t.group.Enable(axis1, axis2)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply.String())

	return nil
}

func runLockstepInfo(out io.Writer, t *lockstepTarget, _ []string) error {
	info, err := t.group.Info()
	if err != nil {
		return err
	}

	if !info.Enabled {
		fmt.Fprintln(out, "disabled")
		return nil
	}

	fmt.Fprintf(out, "axis1=%d axis2=%d offset=%d twist=%d\n", info.Axis1, info.Axis2, info.Offset, info.Twist)

	return nil
}

func runLockstepStatus(out io.Writer, t *lockstepTarget, _ []string) error {
	status, err := t.group.Status()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, status)

	return nil
}
