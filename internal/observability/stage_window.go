package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// stageTargets are the p95 budgets, in milliseconds, for each pipeline stage
// of a voice turn. Stages without an entry have no budget.
var stageTargets = map[string]float64{
	"transcribe":  4000,
	"generate":    6000,
	"synthesize":  8000,
	"scene_intro": 8000,
	"turn_total":  18000,
}

// StageLatency summarises the retained samples of one stage.
type StageLatency struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	MaxMS       float64 `json:"max_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
	OverTarget  int     `json:"over_target,omitempty"`
	WithinSLO   bool    `json:"within_slo"`
}

// OutcomeCount counts a non-latency turn outcome, e.g. a text-only reply.
type OutcomeCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LatencyReport is served by /v1/perf/latency.
type LatencyReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	WindowSize  int            `json:"window_size"`
	Stages      []StageLatency `json:"stages"`
	Outcomes    []OutcomeCount `json:"outcomes,omitempty"`
}

// stageWindow keeps the most recent samples per stage in fixed rings.
type stageWindow struct {
	mu       sync.Mutex
	size     int
	rings    map[string]*sampleRing
	outcomes map[string]int
}

type sampleRing struct {
	ms    []float64
	pos   int
	count int
	last  float64
}

func (r *sampleRing) add(v float64) {
	r.ms[r.pos] = v
	r.pos = (r.pos + 1) % len(r.ms)
	if r.count < len(r.ms) {
		r.count++
	}
	r.last = v
}

func (r *sampleRing) sorted() []float64 {
	out := append([]float64(nil), r.ms[:r.count]...)
	sort.Float64s(out)
	return out
}

func newStageWindow(size int) *stageWindow {
	if size <= 0 {
		size = 256
	}
	return &stageWindow{
		size:     size,
		rings:    make(map[string]*sampleRing),
		outcomes: make(map[string]int),
	}
}

func (w *stageWindow) observe(stage string, ms float64) {
	stage = strings.TrimSpace(stage)
	if stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.rings[stage]
	if !ok {
		r = &sampleRing{ms: make([]float64, w.size)}
		w.rings[stage] = r
	}
	r.add(ms)
}

func (w *stageWindow) countOutcome(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.mu.Lock()
	w.outcomes[name]++
	w.mu.Unlock()
}

func (w *stageWindow) reset() {
	w.mu.Lock()
	w.rings = make(map[string]*sampleRing)
	w.outcomes = make(map[string]int)
	w.mu.Unlock()
}

func (w *stageWindow) report() LatencyReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	rep := LatencyReport{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]StageLatency, 0, len(w.rings)),
	}
	for _, stage := range sortedKeys(w.rings) {
		r := w.rings[stage]
		if r.count == 0 {
			continue
		}
		rep.Stages = append(rep.Stages, summarise(stage, r))
	}
	for _, name := range sortedKeys(w.outcomes) {
		rep.Outcomes = append(rep.Outcomes, OutcomeCount{Name: name, Count: w.outcomes[name]})
	}
	return rep
}

func summarise(stage string, r *sampleRing) StageLatency {
	samples := r.sorted()
	target := stageTargets[stage]
	var sum float64
	over := 0
	for _, v := range samples {
		sum += v
		if target > 0 && v > target {
			over++
		}
	}
	p95 := nearestRank(samples, 95)
	return StageLatency{
		Stage:       stage,
		Samples:     len(samples),
		LastMS:      round2(r.last),
		AvgMS:       round2(sum / float64(len(samples))),
		P50MS:       round2(nearestRank(samples, 50)),
		P95MS:       round2(p95),
		MaxMS:       round2(samples[len(samples)-1]),
		TargetP95MS: target,
		OverTarget:  over,
		WithinSLO:   target == 0 || p95 <= target,
	}
}

// nearestRank returns the p-th percentile of an ascending slice.
func nearestRank(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(p)/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
