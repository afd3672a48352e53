// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard renders the household metrics panel: headline, eve
// label, clock, battery dot gauge, load and sun gauges, and the last user
// line. Render is a pure function of the snapshot, the layout and the time.
package dashboard
