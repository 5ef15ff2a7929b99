package engine

import (
	"time"

	"execedge/internal/catalog"
	"execedge/internal/storage"
)

// EvaluateChallenges advances each challenge's state machine. prev holds the
// stored states by challenge ID; completed and failed are terminal and are
// returned unchanged.
//
// A challenge completes when its target is met on or before the deadline and
// fails once now is past the deadline without that happening.
func EvaluateChallenges(defs []catalog.ChallengeDefinition, habits []HabitStatus, snap storage.Snapshot, prev map[string]storage.ChallengeState, now time.Time) []ChallengeProgress {
	out := make([]ChallengeProgress, 0, len(defs))
	for _, d := range defs {
		old, hasOld := prev[d.ID]
		if hasOld && ChallengeStatus(old.Status).IsTerminal() {
			out = append(out, ChallengeProgress{
				Definition: d,
				Status:     ChallengeStatus(old.Status),
				Progress:   old.Progress,
				ResolvedAt: old.ResolvedAt,
			})
			continue
		}

		v, met := metric(d.Type, d.Category, d.Target, habits, snap)
		cp := ChallengeProgress{
			Definition: d,
			Status:     ChallengeActive,
			Progress:   clampProgress(v, d.Target),
		}
		pastDeadline := now.After(d.Deadline)
		switch {
		case met && !pastDeadline:
			cp.Status = ChallengeCompleted
		case pastDeadline:
			cp.Status = ChallengeFailed
		}
		if cp.Status.IsTerminal() {
			at := now
			cp.ResolvedAt = &at
		}
		cp.Changed = !hasOld || cp.Status != ChallengeStatus(old.Status) || cp.Progress != old.Progress
		out = append(out, cp)
	}
	return out
}
