// Package core provides filtering, sorting, and lookup over history events.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toasty/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // kind, type, message, title, category, reason, notification, timestamp
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex  *regexp.Regexp
	intVal uint64
	cutoff time.Time
}

// FilterExpr is a list of conditions ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering events.
type FilterOptions struct {
	Since time.Duration // Only events newer than now-since (0=all)
	Kind  model.Kind    // Empty matches every kind
	Type  string        // Empty matches every type
	Limit int           // Maximum results (0=unlimited)
}

// Filter returns the events matching opts, preserving order.
func Filter(events []model.Event, opts FilterOptions) []model.Event {
	now := time.Now()
	result := make([]model.Event, 0, len(events))

	for _, e := range events {
		if opts.Since > 0 && e.Time().Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		result = append(result, e)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result
}

// ParseDuration parses a duration with day and week suffixes.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if n, found := strings.CutSuffix(s, suffix); found {
			v, err := strconv.Atoi(n)
			if err != nil {
				return 0, fmt.Errorf("invalid duration: %s", s)
			}
			return time.Duration(v) * unit, nil
		}
	}
	return time.ParseDuration(s)
}

// ParseKind parses an event kind.
func ParseKind(s string) (model.Kind, error) {
	k := model.Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("invalid kind: %s (use one of %v)", s, model.Kinds())
	}
	return k, nil
}

// ParseFilter parses a filter expression such as
// "kind=suppressed,message~publish,timestamp>1h".
// Conditions are comma-separated and ANDed together.
//
// Fields: kind, type, message, title, category, reason, notification, timestamp
// Operators: = != ~ (contains) ~= (regex) > < >= <=
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

// Longer operators first so "!=" is not read as "=".
var operators = []FilterOp{
	FilterOpNotEqual,
	FilterOpGreaterEq,
	FilterOpLessEq,
	FilterOpRegex,
	FilterOpEqual,
	FilterOpContains,
	FilterOpGreater,
	FilterOpLess,
}

func parseCondition(s string) (FilterCondition, error) {
	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.init(); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}
	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

func (c *FilterCondition) init() error {
	switch c.Field {
	case "kind", "k":
		c.Field = "kind"
	case "type", "t":
		c.Field = "type"
	case "message", "msg", "body":
		c.Field = "message"
	case "title":
	case "category", "cat":
		c.Field = "category"
	case "reason":
	case "notification", "nid", "id":
		c.Field = "notification"
		v, err := strconv.ParseUint(c.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid notification id: %s", c.Value)
		}
		c.intVal = v
	case "timestamp", "time", "ts":
		c.Field = "timestamp"
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid timestamp value: %w", err)
		}
		c.cutoff = time.Now().Add(-d)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

// Match reports whether e satisfies every condition.
func (f *FilterExpr) Match(e model.Event) bool {
	for i := range f.Conditions {
		if !f.Conditions[i].Match(e) {
			return false
		}
	}
	return true
}

// Match reports whether e satisfies this condition.
func (c *FilterCondition) Match(e model.Event) bool {
	switch c.Field {
	case "kind":
		return c.matchString(string(e.Kind))
	case "type":
		return c.matchString(e.Type)
	case "message":
		return c.matchString(e.Message)
	case "title":
		return c.matchString(e.Title)
	case "category":
		return c.matchString(e.Category)
	case "reason":
		return c.matchString(e.Reason)
	case "notification":
		return c.matchUint(e.NotificationID)
	case "timestamp":
		return c.matchTime(e.Time())
	default:
		return false
	}
}

func (c *FilterCondition) matchString(v string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.Value
	case FilterOpNotEqual:
		return v != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(v)
	default:
		return false
	}
}

func (c *FilterCondition) matchUint(v uint64) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.intVal
	case FilterOpNotEqual:
		return v != c.intVal
	case FilterOpGreater:
		return v > c.intVal
	case FilterOpLess:
		return v < c.intVal
	case FilterOpGreaterEq:
		return v >= c.intVal
	case FilterOpLessEq:
		return v <= c.intVal
	default:
		return false
	}
}

// Timestamps compare against now minus the duration, so "timestamp>1h" means
// newer than an hour ago.
func (c *FilterCondition) matchTime(t time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return t.After(c.cutoff)
	case FilterOpLess:
		return t.Before(c.cutoff)
	case FilterOpGreaterEq:
		return !t.Before(c.cutoff)
	case FilterOpLessEq:
		return !t.After(c.cutoff)
	default:
		return false
	}
}

// FilterWithExpr returns the events matching expr.
func FilterWithExpr(events []model.Event, expr *FilterExpr) []model.Event {
	if expr == nil || len(expr.Conditions) == 0 {
		return events
	}
	result := make([]model.Event, 0, len(events))
	for _, e := range events {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
