package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/notify"
)

var sendOpts struct {
	typ       string
	duration  string
	showClose bool
	noDedup   bool
	quiet     bool
}

var sendCmd = &cobra.Command{
	Use:   "send MESSAGE",
	Short: "Show a toast",
	Long: `Show a toast and print its notification ID.

The duration accepts Go durations (2s, 1m30s). 0 keeps the toast open until
it is closed; omitting it uses the daemon's configured timeout.

Examples:
  toasty send "Build finished"
  toasty send --type error --duration 0 "Deploy failed"
  toasty send --no-dedup "Raw toast that bypasses suppression"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(sendOpts.typ, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addSendFlags(sendCmd)
	sendCmd.Flags().StringVarP(&sendOpts.typ, "type", "t", "info",
		"Notification type (success, warning, info, error)")
	sendCmd.Flags().BoolVar(&sendOpts.noDedup, "no-dedup", false,
		"Bypass duplicate suppression")

	for _, t := range []notify.Type{notify.TypeSuccess, notify.TypeWarning, notify.TypeInfo, notify.TypeError} {
		typed := &cobra.Command{
			Use:   string(t) + " MESSAGE",
			Short: fmt.Sprintf("Show a %s toast", t),
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSend(string(t), strings.Join(args, " "))
			},
		}
		addSendFlags(typed)
		rootCmd.AddCommand(typed)
	}
}

func addSendFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sendOpts.duration, "duration", "d", "",
		"Auto-dismiss after this long (0 = stay until closed)")
	cmd.Flags().BoolVar(&sendOpts.showClose, "close", true,
		"Show a close mark on the toast")
	cmd.Flags().BoolVarP(&sendOpts.quiet, "quiet", "q", false,
		"Do not print the notification ID")
}

// durationMillis converts the --duration flag into the wire convention.
func durationMillis(s string) (int32, error) {
	if s == "" {
		return dbus.DefaultDuration, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative: %s", s)
	}
	return int32(d.Milliseconds()), nil
}

func runSend(typ, message string) error {
	if _, err := notify.ParseType(typ); err != nil {
		return err
	}
	ms, err := durationMillis(sendOpts.duration)
	if err != nil {
		return err
	}

	req := dbus.ShowRequest{
		Type:       typ,
		Message:    message,
		DurationMs: ms,
		ShowClose:  sendOpts.showClose,
	}

	return withClient(func(ctx context.Context, c *dbus.Client) error {
		if sendOpts.noDedup {
			id, err := c.Show(ctx, req)
			if err != nil {
				return err
			}
			printID(id)
			return nil
		}

		res, err := c.Notify(ctx, req)
		if err != nil {
			return err
		}
		if !res.Shown {
			logger.Info("notification suppressed", "reason", res.Reason, "category", res.Category)
			if !sendOpts.quiet {
				fmt.Printf("suppressed (%s)\n", res.Reason)
			}
			return nil
		}
		printID(res.ID)
		return nil
	})
}

func printID(id notify.ID) {
	if !sendOpts.quiet {
		fmt.Println(uint64(id))
	}
}
