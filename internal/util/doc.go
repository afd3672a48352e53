// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the astrid packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: column-aware truncation with ellipsis
//   - TailWidth: keep the end of a growing line
//   - StringWidth: display width in terminal columns
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	line := util.TailWidth(buffer, width-2)
//	err := util.AtomicWriteFile(path, data, 0600, 0700)
package util
