package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/notify"
)

var closeCmd = &cobra.Command{
	Use:   "close ID",
	Short: "Close a toast by its notification ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("invalid notification ID: %s", args[0])
		}

		return withClient(func(ctx context.Context, c *dbus.Client) error {
			closed, err := c.CloseNotification(ctx, notify.ID(n))
			if err != nil {
				return err
			}
			if !closed {
				return fmt.Errorf("notification %d is not open", n)
			}
			return nil
		})
	},
}

var closeAllCmd = &cobra.Command{
	Use:   "close-all",
	Short: "Close every open toast",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			n, err := c.CloseAll(ctx)
			if err != nil {
				return err
			}
			logger.Debug("closed notifications", "count", n)
			fmt.Println(n)
			return nil
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the running daemon's name and version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			info, err := c.ServerInformation(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s (%s)\n", info.Name, info.Version, info.Vendor)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(closeAllCmd)
	rootCmd.AddCommand(infoCmd)
}
