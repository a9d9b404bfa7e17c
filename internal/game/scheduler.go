// internal/game/scheduler.go
package game

// nextEligible computes the next seat to act: starting from current it steps
// skip+1 times in direction, wrapping modulo the seat count and passing over
// finished seats. Callers must check the end-of-game condition (at most one
// active seat) before invoking it; if no unfinished seat exists it returns
// current rather than loop forever.
func nextEligible(seats []*Seat, current, direction, skip int) int {
	n := len(seats)
	if n == 0 {
		return current
	}
	active := 0
	for _, s := range seats {
		if !s.Finished {
			active++
		}
	}
	if active == 0 {
		return current
	}

	idx := current
	for step := 0; step <= skip; step++ {
		idx = (idx + direction + n) % n
		for seats[idx].Finished {
			idx = (idx + direction + n) % n
		}
	}
	return idx
}
