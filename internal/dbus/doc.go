// Package dbus exposes the notification manager on the session bus as
// io.github.jmylchreest.Toasty, and provides the client the toasty CLI uses
// to talk to it. Close and confirm outcomes are delivered as signals.
package dbus
