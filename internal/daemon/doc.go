// Package daemon wires toastyd together. It owns the notification manager
// and connects it to the terminal surface, the event history, sound
// playback and the D-Bus service, and it applies configuration and theme
// changes while running.
package daemon
