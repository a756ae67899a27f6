// Package display renders notifications and confirm dialogs in the terminal.
// It implements the notification manager's surface and dialog presenter on top
// of a bubbletea program, handling stacking rows, mouse hover, close marks
// and keyboard interaction.
package display
