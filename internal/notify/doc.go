// Package notify implements the toast notification manager.
//
// A Manager owns the ordered list of live notifications, assigns each one a
// vertical stacking offset, runs its auto-close timer and removes it again on
// close. Typed shortcuts (Success, Warning, Info, Error) pass through a
// Deduplicator that suppresses repeats within a short window. Confirm presents
// a modal dialog and returns a single-use Pending result.
//
// Rendering is delegated to a Surface and a DialogPresenter, so the manager
// never touches a concrete UI toolkit.
package notify
