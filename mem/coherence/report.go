package coherence

// LevelStats counts the accesses that hit and missed a cache level.
type LevelStats struct {
	Hits   uint64
	Misses uint64
}

// Accesses returns the number of accesses that reached the level.
func (s LevelStats) Accesses() uint64 {
	return s.Hits + s.Misses
}

func (s LevelStats) add(o LevelStats) LevelStats {
	return LevelStats{Hits: s.Hits + o.Hits, Misses: s.Misses + o.Misses}
}

// CoreStats are the counters of one core's private levels.
type CoreStats struct {
	L1 LevelStats
	L2 LevelStats
}

// Summary is the outcome of a whole simulation.
type Summary struct {
	Cores []CoreStats

	// L1 and L2 combine the private levels of all cores.
	L1 LevelStats
	L2 LevelStats
	L3 LevelStats

	TotalHits    uint64
	TotalMisses  uint64
	MemoryCycles uint64
	TotalCycles  uint64

	Transitions Tally
}

// HitRate returns the percentage of lookups that hit.
func (r Summary) HitRate() float64 {
	return percentage(r.TotalHits, r.TotalHits+r.TotalMisses)
}

// MissRate returns the percentage of lookups that missed.
func (r Summary) MissRate() float64 {
	return percentage(r.TotalMisses, r.TotalHits+r.TotalMisses)
}

func percentage(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}

	return 100 * float64(part) / float64(whole)
}

func buildReport(
	cfg Config,
	cores []CoreStats,
	l3 LevelStats,
	memoryCycles uint64,
	tally Tally,
) Summary {
	r := Summary{
		Cores:        cores,
		L3:           l3,
		MemoryCycles: memoryCycles,
		Transitions:  tally,
	}

	r.TotalHits = l3.Hits
	r.TotalMisses = l3.Misses
	r.TotalCycles = memoryCycles + l3.Misses*uint64(cfg.L3Latency)

	for _, c := range cores {
		r.L1 = r.L1.add(c.L1)
		r.L2 = r.L2.add(c.L2)

		r.TotalHits += c.L1.Hits + c.L2.Hits
		r.TotalMisses += c.L1.Misses + c.L2.Misses
		r.TotalCycles += c.L1.Misses*uint64(cfg.L1Latency) +
			c.L2.Misses*uint64(cfg.L2Latency)
	}

	return r
}
