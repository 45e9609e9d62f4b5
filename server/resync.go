package server

// resyncCountdown fires once every `every` ticks.
type resyncCountdown struct {
	every int
	left  int
}

func newResyncCountdown(every int) resyncCountdown {
	if every <= 0 {
		every = 1
	}
	return resyncCountdown{every: every, left: every}
}

func (r *resyncCountdown) reset() {
	r.left = r.every
}

func (r *resyncCountdown) tick() bool {
	r.left--
	if r.left > 0 {
		return false
	}
	r.left = r.every
	return true
}
