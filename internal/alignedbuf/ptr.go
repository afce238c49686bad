// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package alignedbuf

import "unsafe"

// uintptrOf returns the address of b's backing array, used only to assert
// alignment (never retained or used for pointer arithmetic across a GC
// safepoint).
func uintptrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
