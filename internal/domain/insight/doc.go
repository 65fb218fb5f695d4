// Package insight implements the analytics core of Respira: the pure
// calculators that turn a user's normalized behaviour series into derived
// progress signals.
//
// The pipeline is one-directional:
//
//	normalized records -> {StreakPolicy, Analyzer, PatternDetector}
//	                   -> {ConsistencyScore, Projector, RewardEngine}
//	                   -> aggregation (application layer)
//
// Everything here is synchronous and side-effect free, with one exception:
// the goal Projector performs a conditional write when a user outgrows
// their active goal. All calculators take the reference "today" as an
// argument so behaviour is reproducible in tests.
//
// Two histories, two streaks. The product carries two deliberately distinct
// streak definitions. The logged-entries streak counts only days the user
// explicitly logged and ignores calendar gaps; it feeds the consistency
// score, the goal projection, and rewards. The calendar-complete streak
// materializes every day since the first log and treats unlogged days as
// smoke-free; it feeds the lifetime stats view. StreakPolicy makes the
// choice explicit at every call site instead of duplicating the logic.
package insight
