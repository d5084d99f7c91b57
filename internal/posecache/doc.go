// Package posecache owns the per-frame pose cache and overlap event engine.
//
// Responsibilities: polling the VR runtime once per frame, caching render
// and game poses with the role table, edge-detecting button and overlap
// transitions against the previous frame, and dispatching them synchronously
// to registered listeners. Listener sets and overlap volumes may be mutated
// from any goroutine while updates run.
//
// Key types: Manager, Config.
//
// The package runs no goroutines of its own. A host drives Update once per
// frame (see internal/frameloop).
package posecache
