package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/core"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/store"
)

var historyOpts struct {
	// Filter options
	since  string
	kind   string
	typ    string
	limit  int
	search string
	filter string

	// Sort options
	sort string

	// Output options
	format     string
	field      string
	template   string
	categories bool

	follow bool
}

var historyCmd = &cobra.Command{
	Use:   "history [index|id]",
	Short: "Query the daemon's event history",
	Long: `Query the events toastyd recorded: toasts shown, suppressed and closed,
and dialogs confirmed or cancelled.

With an index (1-based, after filtering and sorting) or an ID prefix, outputs
that single event.

Filter expressions are comma-separated conditions over the fields kind,
type, message, title, category, reason, notification and timestamp using
=, !=, ~ (contains), ~= (regex), >, >=, <, <=.

Examples:
  toasty history --since 1h
  toasty history --filter "kind=suppressed,category=publish"
  toasty history --sort type:asc --format json
  toasty history 3 --field message
  toasty history --follow --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Show events from the last duration (e.g., 1h, 7d, 1w)")
	historyCmd.Flags().StringVar(&historyOpts.kind, "kind", "",
		"Filter by kind (shown, suppressed, closed, confirmed, cancelled)")
	historyCmd.Flags().StringVar(&historyOpts.typ, "type", "",
		"Filter by notification type")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of events to show (0=unlimited)")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Search in message and title")
	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		"Filter expression (e.g., \"kind=shown,message~deploy\")")

	historyCmd.Flags().StringVar(&historyOpts.sort, "sort", "timestamp:desc",
		"Sort as field:order (timestamp, kind, type; asc, desc)")

	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format (plain, dmenu, json, ids)")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output a single field (id, kind, type, message, title, category, reason, time)")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Custom Go template for plain and dmenu output")
	historyCmd.Flags().BoolVar(&historyOpts.categories, "categories", false,
		"List the dedup categories seen in history")

	historyCmd.Flags().BoolVarP(&historyOpts.follow, "follow", "F", false,
		"Keep running and print new events as they are recorded")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := historyPath()
	if err != nil {
		return err
	}

	var expr *core.FilterExpr
	if historyOpts.filter != "" {
		expr, err = core.ParseFilter(historyOpts.filter)
		if err != nil {
			return err
		}
	}

	events, err := store.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	logger.Debug("loaded history", "path", path, "count", len(events))

	if historyOpts.categories {
		for _, c := range core.Categories(events) {
			fmt.Println(c)
		}
		return nil
	}

	if historyOpts.follow {
		return followHistory(path, events, expr)
	}

	events, err = selectEvents(events, expr)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return outputLookup(events, args[0])
	}

	if len(events) == 0 {
		logger.Debug("no events to output")
		return nil
	}
	return createFormatter().Format(os.Stdout, events)
}

// selectEvents applies the filter flags, search and sort in that order.
func selectEvents(events []model.Event, expr *core.FilterExpr) ([]model.Event, error) {
	opts := core.FilterOptions{Type: historyOpts.typ}

	if historyOpts.since != "" {
		d, err := core.ParseDuration(historyOpts.since)
		if err != nil {
			return nil, err
		}
		opts.Since = d
	}
	if historyOpts.kind != "" {
		k, err := core.ParseKind(historyOpts.kind)
		if err != nil {
			return nil, err
		}
		opts.Kind = k
	}

	events = core.Filter(events, opts)
	events = core.FilterWithExpr(events, expr)
	if historyOpts.search != "" {
		events = core.Search(events, historyOpts.search)
	}

	core.Sort(events, core.ParseSort(historyOpts.sort))

	if historyOpts.limit > 0 && len(events) > historyOpts.limit {
		events = events[:historyOpts.limit]
	}
	return events, nil
}

// outputLookup prints one event chosen by index or ID prefix.
func outputLookup(events []model.Event, arg string) error {
	var e *model.Event
	if idx, err := strconv.Atoi(parseDmenuSelection(arg)); err == nil {
		e = core.LookupByIndex(events, idx)
		if e == nil {
			return fmt.Errorf("event at index %d not found", idx)
		}
	} else {
		e = core.LookupByID(events, arg)
		if e == nil {
			return fmt.Errorf("event with ID %s not found", arg)
		}
	}

	if historyOpts.field != "" {
		fmt.Println(output.FormatField(e, historyOpts.field))
		return nil
	}

	// Single events default to JSON
	if historyOpts.format == "plain" {
		historyOpts.format = "json"
	}
	return createFormatter().Format(os.Stdout, []model.Event{*e})
}

// parseDmenuSelection extracts the index from a dmenu line such as
// "3 | 5m | + shown | Build finished".
func parseDmenuSelection(selection string) string {
	selection = strings.TrimSpace(selection)
	if before, _, found := strings.Cut(selection, "|"); found {
		return strings.TrimSpace(before)
	}
	return selection
}

// followHistory prints matching events oldest first, then every new one the
// daemon appends until interrupted.
func followHistory(path string, initial []model.Event, expr *core.FilterExpr) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	formatter := createFollowFormatter()

	emit := func(events []model.Event) {
		mu.Lock()
		defer mu.Unlock()

		var fresh []model.Event
		for _, e := range events {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			fresh = append(fresh, e)
		}

		fresh = core.FilterWithExpr(fresh, expr)
		core.Sort(fresh, core.SortOptions{Field: core.SortByTimestamp, Order: core.SortAsc})
		if len(fresh) > 0 {
			if err := formatter.Format(os.Stdout, fresh); err != nil {
				logger.Warn("failed to write events", "error", err)
			}
		}
	}

	emit(initial)

	watcher, err := store.NewFileWatcher(path, func() {
		events, err := store.LoadFile(path)
		if err != nil {
			logger.Warn("failed to reload history", "error", err)
			return
		}
		emit(events)
	}, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}

// createFormatter creates the output formatter based on options.
func createFormatter() output.Formatter {
	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	return output.NewFormatter(output.FormatType(strings.ToLower(historyOpts.format)), opts)
}

// createFollowFormatter streams JSON as one object per line so the output
// stays parseable while it grows.
func createFollowFormatter() output.Formatter {
	if strings.EqualFold(historyOpts.format, string(output.FormatJSON)) {
		return output.JSONLinesFormatter{}
	}
	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	opts.ShowIndex = false
	return output.NewFormatter(output.FormatType(strings.ToLower(historyOpts.format)), opts)
}
