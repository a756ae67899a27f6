package notify

import (
	"strings"
	"sync"
	"time"
)

// DefaultDedupWindow is the debounce window for typed shortcuts.
const DefaultDedupWindow = time.Second

// CategoryRule maps a keyword found in a message to an action category.
type CategoryRule struct {
	Keyword  string // Matched case-insensitively as a substring
	Category string
}

// DefaultCategoryRules returns the stock keyword table. Rules are checked in order.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Keyword: "publish", Category: "publish"},
		{Keyword: "clause has been published", Category: "publish"},
		{Keyword: "reject", Category: "reject"},
		{Keyword: "resolution", Category: "resolution"},
	}
}

// SuppressReason explains why a typed notification was not shown.
type SuppressReason int

const (
	// SuppressSameCategory means the action category matched the last
	// accepted notification inside the window.
	SuppressSameCategory SuppressReason = iota + 1
	// SuppressDuplicate means type and content matched the last accepted
	// notification inside the window.
	SuppressDuplicate
)

// String returns the string representation of SuppressReason.
func (r SuppressReason) String() string {
	switch r {
	case SuppressSameCategory:
		return "same-category"
	case SuppressDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Deduplicator remembers the last accepted typed notification and rejects
// related ones that arrive within the window.
type Deduplicator struct {
	mu      sync.Mutex
	enabled bool
	window  time.Duration
	rules   []CategoryRule

	lastCategory string
	lastType     Type
	lastContent  string
	lastAccepted time.Time
}

// NewDeduplicator creates a Deduplicator. A nil rules slice uses
// DefaultCategoryRules; a non-positive window uses DefaultDedupWindow.
func NewDeduplicator(window time.Duration, rules []CategoryRule) *Deduplicator {
	d := &Deduplicator{enabled: true}
	d.configure(window, rules)
	return d
}

// Configure replaces the window and keyword table. The last accepted
// notification is kept.
func (d *Deduplicator) Configure(enabled bool, window time.Duration, rules []CategoryRule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
	d.configure(window, rules)
}

func (d *Deduplicator) configure(window time.Duration, rules []CategoryRule) {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if rules == nil {
		rules = DefaultCategoryRules()
	}
	d.window = window
	d.rules = make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		if r.Keyword == "" {
			continue
		}
		d.rules = append(d.rules, CategoryRule{Keyword: strings.ToLower(r.Keyword), Category: r.Category})
	}
}

// Window returns the debounce window.
func (d *Deduplicator) Window() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// Classify returns the action category for a message. Without a keyword
// match the category is the message itself.
func (d *Deduplicator) Classify(content string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifyLocked(content)
}

func (d *Deduplicator) classifyLocked(content string) string {
	lower := strings.ToLower(content)
	for _, r := range d.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return content
}

// Accept decides whether a typed notification may be shown at now. On
// acceptance the last category, type, content and timestamp are updated
// together. On rejection the reason and category are returned.
func (d *Deduplicator) Accept(t Type, content string, now time.Time) (Suppressed, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	category := d.classifyLocked(content)

	if d.enabled && !d.lastAccepted.IsZero() && now.Sub(d.lastAccepted) < d.window {
		if category == d.lastCategory {
			return Suppressed{Reason: SuppressSameCategory, Category: category}, false
		}
		if t == d.lastType && content == d.lastContent {
			return Suppressed{Reason: SuppressDuplicate, Category: category}, false
		}
	}

	d.lastCategory = category
	d.lastType = t
	d.lastContent = content
	d.lastAccepted = now
	return Suppressed{}, true
}
