// Package catalog discovers candidate images on a remote tree and picks the
// next one to show.
//
// Basic flow:
//   - compile configuration once with NewCycle (bad patterns and unknown sort
//     orders fail here, before any connection is made)
//   - every poll, call Cycle.Run with a fresh filesystem.Lister and the
//     SelectionState returned by the previous poll
//   - when Result.Changed is true, fetch Result.Path and display it
//
// Each rule's tree is walked depth first with siblings in natural order.
// Exclude patterns prune whole directories before they are listed; include
// patterns and the extension set are evaluated on leaves only. Nothing is
// cached between runs.
package catalog
