// Package harness runs record/replay conformance scenarios against the
// interception engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: record_then_replay
//	description: "A recorded value is replayed without running the call"
//	store: memory            # memory (default) or sqlite
//	match: key               # key (default) or exact
//	format: json             # json (default) or cbor
//	compression: none        # none, zstd or lz4
//	steps:
//	  - mode: record
//	    call: PaymentService.processPayment
//	    args: [{amount: 10}]
//	    returns: {id: 1, status: OK}
//	    expect: proceed
//	  - mode: replay
//	    call: PaymentService.processPayment
//	    args: [{amount: 10}]
//	    expect: skip-with-value
//	assertions:
//	  - type: artifact_count
//	    call: PaymentService.processPayment
//	    count: 1
//
// A step describes one intercepted call. When the engine decides to
// proceed, the harness plays the real operation: it fails with the
// message in fails, completes void when void is set, or returns returns.
//
// # Assertion Types
//
//   - artifact_count: the store holds exactly count artifacts for call
//   - decisions: the steps produced exactly these decision kinds, in order
//   - executed: the real operation ran exactly count times for call
//
// Every scenario runs against a fresh store with fixed artifact IDs, so
// traces are stable for golden comparison.
package harness
