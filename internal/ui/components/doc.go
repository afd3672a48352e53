// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the full-screen overlays drawn over the display.

OfflineOverlay (offline_overlay.go) covers the screen while the backend is
unreachable, with an elapsed counter and a spinner.

TooSmallOverlay (too_small_overlay.go) replaces the display when the
terminal is below the minimum size and names the required dimensions.

Both are value types updated through Bubble Tea messages and rendered with
the shared theme from the styles package.
*/
package components
