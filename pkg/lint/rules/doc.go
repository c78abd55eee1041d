// Package rules provides the built-in flow rules for flowfix.
//
// Every rule reports the findings of one flow code. The file is analyzed
// once per check and the rules share that report; each diagnostic carries
// the correction proposals of its finding.
//
//   - Reachability:
//
//   - FLOW001: unreachable-code - Statement can never execute
//
//   - FLOW002: dead-code - Statement only reachable under a constant-false condition
//
//   - FLOW004: missing-return - Method with a result type can complete normally
//
//   - FLOW010: misplaced-jump - Break or continue without a target
//
//   - Assignment:
//
//   - FLOW003: uninitialized-variable - Read before definite assignment
//
//   - FLOW005: final-reassigned - Final local may already be assigned
//
//   - FLOW008: unused-variable - Local never read
//
//   - FLOW011: type-mismatch - Literal initializer of an incompatible type
//
//   - Null analysis:
//
//   - FLOW006: null-dereference - Dereference of a local that can only be null
//
//   - FLOW007: potential-null-dereference - Dereference of a local that may be null
//
//   - Exceptions and syntax:
//
//   - FLOW009: unhandled-exception - Checked exception neither caught nor declared
//
//   - FLOW012: syntax-error - Source could not be parsed
//
// # Rule Packs
//
// Rule packs are configuration presets for common use cases:
//
//   - core: compile-blocking errors plus cleanup warnings
//   - strict: every rule as an error
//   - relaxed: compile-blocking rules only
//   - cleanup: removal-only fixes for unattended runs
//
// Use PackByName or Packs to access pack definitions programmatically.
//
// # Registration
//
// Rules are registered with the default registry via RegisterAll.
package rules
