// Package dispatch turns raw invocations into typed handler calls.
//
// A Dispatcher is built once per interface and implementation type from a
// map of handlers keyed by method name. Its Invoke method is the raw invoke
// function of every object it wraps:
//
//  1. release and retain are answered through the implementation's
//     object.Counted methods and must carry empty counts.
//  2. The method id is looked up in the interface chain; unknown ids are
//     ErrorInvalid.
//  3. The supplied counts and every buffer size are checked against the
//     method plan before the handler runs.
//  4. The handler reads inputs and stages outputs through a Call.
//  5. Staged outputs are written back only when the handler succeeds; any
//     output objects staged by a failing handler are released.
//
// Handlers return Go errors. errors.StatusOf maps them to the status the
// caller sees, so a handler that returns an object.Status (for example a
// transport code from a nested call) has it passed through unchanged.
package dispatch
