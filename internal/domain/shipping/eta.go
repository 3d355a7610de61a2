package shipping

// refreshETAs keeps the head-stop durations current. Every
// ETARefreshInterval they are recomputed exactly; in between the elapsed time
// is subtracted, and a ship that is behind schedule has its remaining
// duration halved instead of going negative.
func (s *Scheduler) refreshETAs(st *updateState) {
	elapsed := st.now.Sub(s.lastUpdate)
	exact := st.now.Sub(s.lastExactETA) >= s.tuning.ETARefreshInterval

	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		if len(plan) == 0 {
			continue
		}
		head := &plan[0]
		switch {
		case exact:
			head.DurationFromPrevious = st.costs.shipToPort(id, head.Port)
		case head.DurationFromPrevious >= elapsed:
			head.DurationFromPrevious -= elapsed
		default:
			head.DurationFromPrevious /= 2
		}
	}

	if exact {
		s.lastExactETA = st.now
	}
	s.lastUpdate = st.now
}
