package main

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/mammoth"
	"github.com/cwbudde/mayfly"
)

type topCandidate struct {
	Eval       int                `json:"eval"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

type optimizationConfig struct {
	dry              []float64
	reference        []float64
	finalDry         []float64
	finalReference   []float64
	sampleRate       int
	baseParams       mammoth.Params
	defs             []knobDef
	initCandidate    candidate
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	renderBlockSize  int
	refineTopK       int
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int
	topK             int
	// onImprove, if set, is called with each new best outside the state lock.
	onImprove func(best candidate, metrics analysis.Metrics, evals int, top []topCandidate)
}

type optimizationEval struct {
	metrics analysis.Metrics
	params  mammoth.Params
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	bestParams  mammoth.Params
	top         []topCandidate
	evals       int
	elapsed     float64
}

// search is the state shared by all worker goroutines of one run.
type search struct {
	cfg      *optimizationConfig
	variant  string
	start    time.Time
	deadline time.Time

	evals    int64
	rounds   atomic.Int64
	improves atomic.Int64

	mu       sync.Mutex
	best     candidate
	bestEval optimizationEval
	top      []topCandidate
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	if len(cfg.defs) == 0 {
		return nil, fmt.Errorf("no knobs to optimize")
	}
	s := &search{
		cfg:     cfg,
		variant: strings.ToLower(cfg.mayflyVariant),
		start:   time.Now(),
		evals:   1,
	}
	s.deadline = s.start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))

	s.best = cloneCandidate(cfg.initCandidate)
	s.bestEval = evaluateCandidate(cfg, s.best)
	s.top = updateTopCandidates(nil, cfg.topK, 1, s.bestEval.metrics, cfg.defs, s.best)
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", s.bestEval.metrics.Score, s.bestEval.metrics.Similarity*100.0)

	var wg sync.WaitGroup
	for range max(cfg.workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s.runRound() {
			}
		}()
	}
	wg.Wait()

	s.mu.Lock()
	best, eval, top := cloneCandidate(s.best), s.bestEval, cloneTopCandidates(s.top)
	s.mu.Unlock()

	if len(cfg.finalDry) > 0 && len(cfg.finalReference) > 0 {
		best, eval = refine(cfg, shortlist(best, top, cfg.defs, max(cfg.refineTopK, 1)))
	}

	return &optimizationResult{
		best:        best,
		bestMetrics: eval.metrics,
		bestParams:  eval.params,
		top:         top,
		evals:       int(atomic.LoadInt64(&s.evals)),
		elapsed:     time.Since(s.start).Seconds(),
	}, nil
}

// runRound runs one Mayfly round and reports whether another may follow.
func (s *search) runRound() bool {
	if time.Now().After(s.deadline) {
		return false
	}
	remaining := s.cfg.maxEvals - int(atomic.LoadInt64(&s.evals))
	if remaining <= 0 {
		return false
	}
	round := s.rounds.Add(1)
	iters := max(1, min(s.cfg.mayflyRoundEvals, remaining)/(2*s.cfg.mayflyPop))

	mc, err := newMayflyConfig(s.variant, s.cfg.mayflyPop, len(s.cfg.defs), iters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mayfly round %d setup failed: %v\n", round, err)
		return false
	}
	mc.Rand = rand.New(rand.NewSource(s.cfg.seed + round*7919))
	mc.ObjectiveFunc = s.objective
	if _, err := runMayfly(mc); err != nil {
		fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
	}
	return true
}

// objective scores one normalized Mayfly position. Once the budget is spent
// every position scores worse than the best so far, which ends the round
// without recording anything.
func (s *search) objective(pos []float64) float64 {
	if time.Now().After(s.deadline) {
		return s.bestScore() + 1
	}
	n, ok := reserveEval(&s.evals, s.cfg.maxEvals)
	if !ok {
		return s.bestScore() + 1
	}
	cand := fromNormalized(pos, s.cfg.defs)
	eval := evaluateCandidate(s.cfg, cand)
	s.record(int(n), cand, eval)
	return eval.metrics.Score
}

func (s *search) record(n int, cand candidate, eval optimizationEval) {
	s.mu.Lock()
	s.top = updateTopCandidates(s.top, s.cfg.topK, n, eval.metrics, s.cfg.defs, cand)
	improved := eval.metrics.Score < s.bestEval.metrics.Score
	var top []topCandidate
	if improved {
		s.best = cloneCandidate(cand)
		s.bestEval = eval
		top = cloneTopCandidates(s.top)
	}
	bestScore := s.bestEval.metrics.Score
	s.mu.Unlock()

	if improved {
		fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%%\n",
			s.improves.Add(1), n, eval.metrics.Score, eval.metrics.Similarity*100.0)
		if s.cfg.onImprove != nil {
			s.cfg.onImprove(cloneCandidate(cand), eval.metrics, n, top)
		}
	}
	if every := s.cfg.reportEvery; every > 0 && n%every == 0 {
		fmt.Printf("Progress eval=%d/%d elapsed=%.1fs best=%.4f\n",
			n, s.cfg.maxEvals, time.Since(s.start).Seconds(), bestScore)
	}
}

func (s *search) bestScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestEval.metrics.Score
}

// shortlist returns up to k distinct candidates, best first.
func shortlist(best candidate, top []topCandidate, defs []knobDef, k int) []candidate {
	out := []candidate{best}
	for _, entry := range top {
		if len(out) >= k {
			break
		}
		c := candidateFromTop(entry, defs, best)
		if !slices.ContainsFunc(out, func(o candidate) bool { return candidateKey(o) == candidateKey(c) }) {
			out = append(out, c)
		}
	}
	return out
}

// refine re-scores cands on the full-length material and keeps the best.
func refine(cfg *optimizationConfig, cands []candidate) (candidate, optimizationEval) {
	full := *cfg
	full.dry, full.reference = cfg.finalDry, cfg.finalReference

	best := cands[0]
	bestEval := evaluateCandidate(&full, best)
	for _, c := range cands[1:] {
		if e := evaluateCandidate(&full, c); e.metrics.Score < bestEval.metrics.Score {
			best, bestEval = c, e
		}
	}
	return cloneCandidate(best), bestEval
}

func evaluateCandidate(cfg *optimizationConfig, cand candidate) optimizationEval {
	params := applyCandidate(cfg.baseParams, cfg.defs, cand)
	wet := renderDry(cfg.dry, cfg.sampleRate, params, cfg.renderBlockSize)
	return optimizationEval{
		metrics: analysis.Compare(cfg.reference, wet, cfg.sampleRate),
		params:  params,
	}
}

// renderDry runs dry through a fresh engine in blocks of blockSize.
func renderDry(dry []float64, sampleRate int, params mammoth.Params, blockSize int) []float64 {
	e := mammoth.NewEngine(float64(sampleRate))
	e.SetParameters(params)
	out := slices.Clone(dry)
	blockSize = max(blockSize, 16)
	for start := 0; start < len(out); start += blockSize {
		e.ProcessBlock(out[start:min(start+blockSize, len(out))])
	}
	return out
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: slices.Clone(c.Vals)}
}

func cloneTopCandidates(in []topCandidate) []topCandidate {
	out := slices.Clone(in)
	for i := range out {
		out[i].Knobs = maps.Clone(in[i].Knobs)
	}
	return out
}

func candidateFromTop(entry topCandidate, defs []knobDef, fallback candidate) candidate {
	c := cloneCandidate(fallback)
	for i, d := range defs {
		if v, ok := entry.Knobs[d.Name]; ok {
			c.Vals[i] = clamp(v, d.Min, d.Max)
		}
	}
	return c
}

func candidateKey(c candidate) string {
	parts := make([]string, len(c.Vals))
	for i, v := range c.Vals {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, ",")
}

var mayflyVariants = map[string]func() *mayfly.Config{
	"ma":      mayfly.NewDefaultConfig,
	"desma":   mayfly.NewDESMAConfig,
	"olce":    mayfly.NewOLCEConfig,
	"eobbma":  mayfly.NewEOBBMAConfig,
	"gsasma":  mayfly.NewGSASMAConfig,
	"mpma":    mayfly.NewMPMAConfig,
	"aoblmoa": mayfly.NewAOBLMOAConfig,
}

// newMayflyConfig sets up a variant over the unit hypercube.
func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	ctor, ok := mayflyVariants[variant]
	if !ok {
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg := ctor()
	cfg.ProblemSize = dims
	cfg.LowerBound, cfg.UpperBound = 0, 1
	cfg.MaxIterations = iters
	cfg.NPop, cfg.NPopF = pop, pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

// reserveEval claims the next evaluation number, never handing out more
// than maxEvals in total.
func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

// updateTopCandidates inserts one result and keeps the topK best, ties
// broken by evaluation order.
func updateTopCandidates(top []topCandidate, topK int, eval int, metrics analysis.Metrics, defs []knobDef, cand candidate) []topCandidate {
	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = cand.Vals[i]
	}
	top = append(top, topCandidate{
		Eval:       eval,
		Score:      metrics.Score,
		Similarity: metrics.Similarity,
		Knobs:      knobs,
	})
	slices.SortFunc(top, func(a, b topCandidate) int {
		return cmp.Or(cmp.Compare(a.Score, b.Score), cmp.Compare(a.Eval, b.Eval))
	})
	return top[:min(len(top), topK)]
}
