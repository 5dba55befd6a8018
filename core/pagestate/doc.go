// Package pagestate tracks which previewable pages have rendered and hands out
// their live handles.
//
// Rendering happens on the host's event loop; preview code runs elsewhere and
// needs to wait for "this page has finished building". Pages announce their
// render container and component instance with RegisterContainer and
// RegisterInstance. The announcement is applied in a post-frame callback, so a
// caller unblocked by Context or Instance always sees a fully built page.
//
// Each entry carries a one-shot readiness Signal. ResetEntry swaps in a fresh
// pending signal without touching the handles: a page that is still mounted
// stays reachable, but a new awaiter waits until the next announcement. This is
// how a stale handle from the previous preview run is told apart from the one
// produced by the current run.
//
// Allowed here:
//   - the registry table, its entries and readiness signals
//   - post-frame scheduling contracts
//
// Not allowed here:
//   - host framework types (see core/host)
//   - preview orchestration (see core/preview)
package pagestate
