package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/coherence"
)

func writeTextReport(w io.Writer, cfg coherence.Config, r coherence.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	policy := "write-back"
	if !cfg.WriteBack {
		policy = "write-through"
	}

	fmt.Fprintf(w, "Configuration: L1 %d/%d, L2 %d/%d, L3 %d/%d lines/cycles, "+
		"%d ways, %s, seed %d\n\n",
		cfg.L1Size, cfg.L1Latency, cfg.L2Size, cfg.L2Latency,
		cfg.L3Size, cfg.L3Latency, cfg.WaysPerSet, policy, cfg.Seed)

	fmt.Fprintln(tw, "Level\tHits\tMisses\t")

	for i, c := range r.Cores {
		fmt.Fprintf(tw, "Core %d L1\t%d\t%d\t\n", i, c.L1.Hits, c.L1.Misses)
		fmt.Fprintf(tw, "Core %d L2\t%d\t%d\t\n", i, c.L2.Hits, c.L2.Misses)
	}

	fmt.Fprintf(tw, "L3\t%d\t%d\t\n", r.L3.Hits, r.L3.Misses)
	fmt.Fprintf(tw, "Total\t%d\t%d\t\n", r.TotalHits, r.TotalMisses)

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nHit rate: %.2f%%\n", r.HitRate())
	fmt.Fprintf(w, "Miss rate: %.2f%%\n", r.MissRate())
	fmt.Fprintf(w, "Memory cycles: %d\n", r.MemoryCycles)
	fmt.Fprintf(w, "Total cycles: %d\n", r.TotalCycles)

	fmt.Fprintln(w, "\nState transitions:")

	for _, t := range transitions(r.Transitions) {
		fmt.Fprintf(w, "  %s -> %s: %d\n", t.From, t.To, t.Count)
	}

	return nil
}

type transitionJSON struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count uint64 `json:"count"`
}

type levelJSON struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

type coreJSON struct {
	L1 levelJSON `json:"l1"`
	L2 levelJSON `json:"l2"`
}

type reportJSON struct {
	Simulation   string           `json:"simulation"`
	Config       coherence.Config `json:"config"`
	Cores        []coreJSON       `json:"cores"`
	L3           levelJSON        `json:"l3"`
	TotalHits    uint64           `json:"total_hits"`
	TotalMisses  uint64           `json:"total_misses"`
	HitRate      float64          `json:"hit_rate"`
	MissRate     float64          `json:"miss_rate"`
	MemoryCycles uint64           `json:"memory_cycles"`
	TotalCycles  uint64           `json:"total_cycles"`
	Transitions  []transitionJSON `json:"transitions"`
}

func writeJSONReport(
	w io.Writer,
	simulation string,
	cfg coherence.Config,
	r coherence.Summary,
) error {
	rsp := reportJSON{
		Simulation:   simulation,
		Config:       cfg,
		L3:           levelJSON(r.L3),
		TotalHits:    r.TotalHits,
		TotalMisses:  r.TotalMisses,
		HitRate:      r.HitRate(),
		MissRate:     r.MissRate(),
		MemoryCycles: r.MemoryCycles,
		TotalCycles:  r.TotalCycles,
		Transitions:  transitions(r.Transitions),
	}

	for _, c := range r.Cores {
		rsp.Cores = append(rsp.Cores, coreJSON{
			L1: levelJSON(c.L1),
			L2: levelJSON(c.L2),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rsp)
}

// transitions lists the transitions that happened at least once.
func transitions(t coherence.Tally) []transitionJSON {
	list := []transitionJSON{}

	for from := cache.State(0); from < cache.NumStates; from++ {
		for to := cache.State(0); to < cache.NumStates; to++ {
			if n := t.Count(from, to); n > 0 {
				list = append(list, transitionJSON{
					From:  from.String(),
					To:    to.String(),
					Count: n,
				})
			}
		}
	}

	return list
}
