// Package loop implements the repeat-until-canceled scheduler that drives
// frame rendering.
//
// A [Loop] has two states, [Running] and [Stopped]. Hosts with their own
// refresh cadence (a bubbletea tick, a raylib frame) call [Loop.Tick] once per
// refresh; headless callers use [Loop.Run] or drive cycles manually with
// [Loop.RunN] and a [ManualClock].
//
// # Cancellation
//
// [Loop.Stop] is idempotent and takes effect before the next cycle, even when
// a tick was already scheduled. A [Supervisor] restarts the loop exactly once
// whenever its inputs change and hands out generation numbers so stale ticks
// can be dropped.
//
// # Failures
//
// A cycle that errors or panics is logged as a [FrameError] and counted; the
// loop keeps going.
package loop
