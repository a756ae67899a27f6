package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/notify"
)

var confirmOpts struct {
	title       string
	confirmText string
	cancelText  string
	typ         string
	wait        time.Duration
}

var confirmCmd = &cobra.Command{
	Use:   "confirm MESSAGE",
	Short: "Ask a yes/no question",
	Long: `Open a confirm dialog and wait for the answer.

Exits 0 when confirmed and 1 when cancelled or dismissed, so it composes
with shell conditionals:

  toasty confirm "Reject the motion?" && reject-motion`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfirm,
}

func init() {
	rootCmd.AddCommand(confirmCmd)

	confirmCmd.Flags().StringVar(&confirmOpts.title, "title", "",
		"Dialog title")
	confirmCmd.Flags().StringVar(&confirmOpts.confirmText, "confirm-text", "",
		"Label of the confirm button (default: Confirm)")
	confirmCmd.Flags().StringVar(&confirmOpts.cancelText, "cancel-text", "",
		"Label of the cancel button (default: Cancel)")
	confirmCmd.Flags().StringVarP(&confirmOpts.typ, "type", "t", "",
		"Dialog type (success, warning, info, error)")
	confirmCmd.Flags().DurationVar(&confirmOpts.wait, "wait", 0,
		"Give up waiting for an answer after this long (0 = wait forever)")
}

func runConfirm(cmd *cobra.Command, args []string) error {
	req := dbus.ConfirmRequest{
		Message:     strings.Join(args, " "),
		Title:       confirmOpts.title,
		ConfirmText: confirmOpts.confirmText,
		CancelText:  confirmOpts.cancelText,
		Type:        confirmOpts.typ,
	}

	client, err := dbus.Dial()
	if err != nil {
		return fmt.Errorf("failed to reach toastyd: %w", err)
	}
	defer client.Close()

	// The answer can take arbitrarily long, so the global timeout does not apply.
	ctx := context.Background()
	if confirmOpts.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, confirmOpts.wait)
		defer cancel()
	}

	err = client.Confirm(ctx, req)
	if errors.Is(err, notify.ErrCancelled) {
		var cancelled *notify.CancelledError
		if errors.As(err, &cancelled) && cancelled.Dismissed {
			logger.Debug("dialog dismissed")
		}
		return exitCodeError{code: 1}
	}
	return err
}
