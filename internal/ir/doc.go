// Package ir defines the canonical representation of intercepted calls
// and the artifacts recorded from them.
//
// This package contains types and pure functions only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - A Descriptor's outcome is set exactly once, after the call completes
//   - Outcomes are a closed sum: Returned, VoidResult, Failed
//   - Artifact keys depend on owner, operation and capture strategy only,
//     never on argument values
//   - All JSON tags use snake_case; the artifact shape is a durable contract
package ir
