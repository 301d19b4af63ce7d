// Package damage implements the three damage-detection strategies
// (Block, Strip, Quadtree) that turn two BGRX framebuffers into a set
// of tight bounding rectangles of changed pixels.
//
// Every Detector both diffs prev against next and writes next's
// (masked) pixels back into prev for every pixel it visits that
// differed; see the per-strategy doc comments for exactly which
// pixels that covers. prev is exclusively owned by the caller across
// a Compare call.
package damage

import "github.com/y-fujii/mfxvnc/internal/fb"

// Detector diffs next against prev, updates prev toward next, and
// reports changed regions through emit. emit may be called zero or
// more times per Compare call; rectangles may overlap but together
// must cover every differing pixel.
type Detector interface {
	Compare(prev, next *fb.Buffer, emit func(fb.Rect))
}
