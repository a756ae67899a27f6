// Package theme handles YAML colour palette loading and hot-reload for toastyd.
// It supports loading themes from ~/.config/toasty/themes/ and provides
// embedded bundled themes for use when no custom theme is configured.
package theme
