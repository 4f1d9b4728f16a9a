// Package search implements the reasoner-agnostic CDCL loop: propagate
// every registered reasoner to a fixpoint, analyze any conflict with
// internal/conflict, backjump, decide, and repeat, generalizing the
// teacher's Solver.Search/Solve.
package search

import (
	"time"

	"github.com/rhartert/halite/internal/conflict"
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/reasoner"
	"github.com/rhartert/halite/internal/trail"
)

// Status mirrors the teacher's LBool-as-search-result idiom but is
// named for what it actually reports.
type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

// Options configures a Search, mirroring the teacher's sat.Options
// plus the brancher selection this module adds.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	MaxConflicts  int64
	Timeout       time.Duration

	// Brancher selects the branching heuristic: "vsids" (default) or
	// "ema". Any other value falls back to VSIDS.
	Brancher string
}

var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	MaxConflicts:  -1,
	Timeout:       -1,
	Brancher:      "vsids",
}

// ReduceableDB is implemented by reasoners that maintain a learnt
// clause database subject to periodic reduction (only the SAT
// reasoner, today).
type ReduceableDB interface {
	NumLearnts() int
	ReduceDB()
}

// Search drives propagation, conflict analysis and decisions to a
// fixpoint over a domain store and a set of registered reasoners.
type Search struct {
	d         *domain.Store
	reasoners []reasoner.Reasoner
	brancher  Brancher
	analyzer  *conflict.Analyzer
	opts      Options

	reduceable []ReduceableDB

	TotalConflicts  int64
	TotalRestarts   int64
	TotalDecisions  int64
	startTime       time.Time
	hasStopCondition bool
}

// New builds a Search over d and the given reasoners.
func New(d *domain.Store, reasoners []reasoner.Reasoner, opts Options) *Search {
	var b Brancher
	switch opts.Brancher {
	case "ema":
		b = NewEMABrancher(opts.VariableDecay)
	default:
		b = NewVSIDSBrancher(opts.VariableDecay)
	}
	for v := 0; v < d.NumVars(); v++ {
		b.NewVar(lits.Var(v))
	}

	var reduceable []ReduceableDB
	for _, r := range reasoners {
		if rd, ok := r.(ReduceableDB); ok {
			reduceable = append(reduceable, rd)
		}
	}

	return &Search{
		d:                d,
		reasoners:        reasoners,
		brancher:         b,
		analyzer:         conflict.New(d),
		opts:             opts,
		reduceable:       reduceable,
		hasStopCondition: opts.MaxConflicts >= 0 || opts.Timeout >= 0,
	}
}

// NotifyNewVar must be called whenever the model creates a new
// variable after a Search has already been constructed (e.g. lazily
// during AddClause-style model building), so the brancher can consider
// it.
func (s *Search) NotifyNewVar(v lits.Var) {
	s.brancher.NewVar(v)
}

func (s *Search) shouldStop() bool {
	if !s.hasStopCondition {
		return false
	}
	if s.opts.MaxConflicts >= 0 && s.TotalConflicts >= s.opts.MaxConflicts {
		return true
	}
	if s.opts.Timeout >= 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return true
	}
	return false
}

// propagateAll runs every reasoner to a shared fixpoint: reasoners are
// re-polled in a round-robin fashion until none of them produces a new
// trail event, mirroring the teacher's single-queue fixpoint but
// generalized to several independent propagators.
func (s *Search) propagateAll() error {
	progress := true
	for progress {
		progress = false
		before := s.d.Trail().Len()
		for _, r := range s.reasoners {
			if err := r.Propagate(); err != nil {
				return err
			}
		}
		if s.d.Trail().Len() != before {
			progress = true
		}
	}
	return nil
}

// Solve runs search to completion (or until a stop condition fires),
// returning Sat with a saved model accessible through the domain
// store's current bounds, Unsat, or Unknown if a stop condition was
// hit first.
func (s *Search) Solve() Status {
	s.startTime = time.Now()
	numConflicts := int64(100)
	numLearnts := 0

	for {
		// Each run starts at ROOT (after a restart, or after a caller
		// restored the store between solves): every variable is a
		// decision candidate again.
		for v := 0; v < s.d.NumVars(); v++ {
			s.brancher.Reinsert(lits.Var(v))
		}
		status := s.run(numConflicts, numLearnts)
		if status != Unknown {
			return status
		}
		if s.shouldStop() {
			return Unknown
		}
		numConflicts += numConflicts / 10
		numLearnts += numLearnts/20 + 1
	}
}

// run performs one restart's worth of search, stopping early (Unknown)
// once the local conflict budget is exhausted.
func (s *Search) run(maxConflicts int64, maxLearnts int) Status {
	s.TotalRestarts++
	localConflicts := int64(0)

	for {
		if s.shouldStop() {
			return Unknown
		}

		if err := s.propagateAll(); err != nil {
			s.TotalConflicts++
			localConflicts++

			if s.d.CurrentLevel() == trail.Root {
				return Unsat
			}

			contradiction, ok := err.(*domain.Contradiction)
			if !ok {
				// A reasoner-independent error (e.g. an InvalidUpdate
				// from a bound clash outside any clause) has no learnt
				// clause to extract: fall back to chronological
				// backtracking of a single level.
				touched := s.d.RestoreLast()
				for _, v := range touched {
					s.brancher.Reinsert(v)
				}
				continue
			}

			learnt, backjumpLevel := s.analyzer.Analyze(contradiction)
			touched := s.d.Restore(backjumpLevel)
			for _, v := range touched {
				s.brancher.Reinsert(v)
			}
			for _, l := range learnt {
				s.brancher.Bump(l.Var())
			}
			s.brancher.Decay()

			if err := s.assertLearnt(learnt); err != nil {
				return Unsat
			}
			continue
		}

		if maxLearnts > 0 {
			for _, rd := range s.reduceable {
				if rd.NumLearnts() >= maxLearnts {
					rd.ReduceDB()
				}
			}
		}

		next, ok := s.brancher.NextDecision(s.d)
		if !ok {
			return Sat // every variable is fixed: a model was found.
		}

		if localConflicts > maxConflicts {
			s.d.Restore(trail.Root)
			return Unknown
		}

		s.d.Checkpoint()
		s.TotalDecisions++
		if _, err := s.d.Set(next, lits.DecisionCause()); err != nil {
			// The decision literal is itself contradictory; let the
			// next propagateAll surface and analyze it.
			continue
		}
	}
}

// Learner is implemented by reasoners that can absorb a freshly learnt
// clause (today, only the SAT reasoner).
type Learner interface {
	Learn(literals []lits.Lit) error
}

func (s *Search) assertLearnt(literals []lits.Lit) error {
	for _, r := range s.reasoners {
		if l, ok := r.(Learner); ok {
			return l.Learn(literals)
		}
	}
	// No reasoner can host clauses: assert the UIP directly. This only
	// happens in configurations without a SAT reasoner registered.
	_, err := s.d.Set(literals[0], lits.DecisionCause())
	return err
}
