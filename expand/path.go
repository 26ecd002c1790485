// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand

import "path/filepath"

// ResolvePath implements spec.md §6's resolvePath: if rel is absolute, it is
// returned normalised; otherwise it is joined with base and normalised
// ('.' and '..' collapsed). Platform-specific separators are accepted on
// input via filepath.Join/Clean; output uses the host convention.
func ResolvePath(base, rel string) string {
	if rel == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Clean(filepath.Join(base, rel))
}
