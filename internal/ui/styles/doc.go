// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the colors and Lip Gloss styles of the astrid
// display.
//
// Colors are AdaptiveColor values so the display reads on light and dark
// terminals alike. Theme bundles the styles for the dashboard, the centre
// text area and the overlays; NewTheme checks the terminal once at startup.
//
// Status indicators are ASCII shapes shown next to colored text so that
// state never depends on color alone.
package styles
