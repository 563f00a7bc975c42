// Package runner implements the turn orchestration layer for cypher-core.
//
// The Runner alternates two scripted agents in strict turn order: the current
// speaker runs one model cycle, its newest assistant message becomes the
// listener's next user input, and the exchange is persisted as training data
// through a chatlog.Recorder (one full-history record and one turn-pair
// record per turn). Roles then swap and the loop repeats.
//
// Termination is an explicit contract rather than a bare infinite loop: the
// loop ends on the first failed run, on a speaker with no assistant output to
// hand over, when the configured turn budget is exhausted, when the injected
// Stop predicate fires, or when the context is cancelled. The Report returned
// by Run names the reason.
package runner
