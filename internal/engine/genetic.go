package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/model"
)

// GeneticConfig holds parameters for the genetic placement optimizer.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	MutationSigma  float64 // Standard deviation of a position mutation, in world units
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.2,
		MutationSigma:  SearchStep,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// chromosome is a candidate access point position.
type chromosome struct {
	pos     model.Point
	fitness float64
}

type geneticOptimizer struct {
	config     GeneticConfig
	smp        *sampler
	txPowerDbm float64
	band       model.Band
	rng        *rand.Rand
	evaluated  int
	best       chromosome
}

func newGeneticOptimizer(smp *sampler, txPowerDbm float64, band model.Band, config GeneticConfig) *geneticOptimizer {
	if config.PopulationSize < 2 {
		config.PopulationSize = 2
	}
	if config.TournamentSize < 1 {
		config.TournamentSize = 1
	}
	return &geneticOptimizer{
		config:     config,
		smp:        smp,
		txPowerDbm: txPowerDbm,
		band:       band,
		rng:        rand.New(rand.NewSource(config.Seed)),
		best:       chromosome{fitness: math.Inf(-1)},
	}
}

// evaluate scores c and keeps the best individual ever seen, so the result
// is never worse than any evaluated position.
func (g *geneticOptimizer) evaluate(c *chromosome) {
	c.fitness = g.smp.score(Transmitter{Position: c.pos, PowerDbm: g.txPowerDbm, Band: g.band})
	g.evaluated++
	if c.fitness > g.best.fitness {
		g.best = *c
	}
}

// rescore re-evaluates population with the current sampler and forgets
// the best individual found on an earlier revision of the plan.
func (g *geneticOptimizer) rescore(population []chromosome) {
	g.best = chromosome{fitness: math.Inf(-1)}
	for i := range population {
		population[i].pos.X = clamp(population[i].pos.X, 0, g.smp.width)
		population[i].pos.Y = clamp(population[i].pos.Y, 0, g.smp.height)
		g.evaluate(&population[i])
	}
}

// initPopulation creates random positions, seeding the plan centre first to
// give the GA a good starting point.
func (g *geneticOptimizer) initPopulation() []chromosome {
	population := make([]chromosome, g.config.PopulationSize)
	population[0] = chromosome{pos: model.Point{X: g.smp.width / 2, Y: g.smp.height / 2}}
	for i := 1; i < len(population); i++ {
		population[i] = chromosome{pos: model.Point{
			X: g.rng.Float64() * g.smp.width,
			Y: g.rng.Float64() * g.smp.height,
		}}
	}
	return population
}

// generation breeds the next population from a scored one.
func (g *geneticOptimizer) generation(population []chromosome) []chromosome {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})

	next := make([]chromosome, 0, g.config.PopulationSize)

	// Elitism: carry over the best individuals unchanged
	eliteCount := g.config.EliteCount
	if eliteCount > len(population) {
		eliteCount = len(population)
	}
	next = append(next, population[:eliteCount]...)

	for len(next) < g.config.PopulationSize {
		parent1 := g.tournamentSelect(population)
		parent2 := g.tournamentSelect(population)

		child := g.blendCrossover(parent1, parent2)
		g.mutate(&child)
		g.evaluate(&child)
		next = append(next, child)
	}
	return next
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return best
}

// blendCrossover places the child at a random point on the line between
// both parents.
func (g *geneticOptimizer) blendCrossover(parent1, parent2 chromosome) chromosome {
	a := g.rng.Float64()
	return chromosome{pos: model.Point{
		X: a*parent1.pos.X + (1-a)*parent2.pos.X,
		Y: a*parent1.pos.Y + (1-a)*parent2.pos.Y,
	}}
}

// mutate applies a gaussian jitter and keeps the position inside the plan.
func (g *geneticOptimizer) mutate(c *chromosome) {
	if g.rng.Float64() < g.config.MutationRate {
		c.pos.X += g.rng.NormFloat64() * g.config.MutationSigma
		c.pos.Y += g.rng.NormFloat64() * g.config.MutationSigma
	}
	c.pos.X = clamp(c.pos.X, 0, g.smp.width)
	c.pos.Y = clamp(c.pos.Y, 0, g.smp.height)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// OptimizeGenetic searches continuous positions with a genetic algorithm,
// scoring individuals with the same fitness as EvaluatePosition. The plan is
// re-read and progress reported after every generation. It returns false
// when the plan has no area.
func (e *Engine) OptimizeGenetic(ctx context.Context, txPowerDbm float64, band model.Band, config GeneticConfig, onProgress ProgressFunc) (model.Point, bool, error) {
	algo := string(model.AlgorithmGenetic)
	start := time.Now()
	if e.plan.Width() <= 0 || e.plan.Height() <= 0 {
		SearchesTotal.WithLabelValues(algo, outcomeEmpty).Inc()
		return model.Point{}, false, nil
	}

	revision := e.plan.Revision()
	g := newGeneticOptimizer(newSampler(e.plan, e.propagator), txPowerDbm, band, config)
	population := g.initPopulation()
	for i := range population {
		g.evaluate(&population[i])
	}

	e.logger.Info("placement search started",
		zap.String("algorithm", algo),
		zap.Int("population", g.config.PopulationSize),
		zap.Int("generations", g.config.Generations),
		zap.Int64("seed", g.config.Seed))

	for gen := 0; gen < g.config.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			SearchesTotal.WithLabelValues(algo, outcomeAbandoned).Inc()
			CandidatesEvaluated.WithLabelValues(algo).Add(float64(g.evaluated))
			return model.Point{}, false, errors.Wrap(err, "genetic search abandoned")
		}
		if rev := e.plan.Revision(); rev != revision {
			e.logger.Warn("plan changed during search",
				zap.Uint64("from_revision", revision),
				zap.Uint64("to_revision", rev),
				zap.Int("generation", gen))
			revision = rev
			g.smp = newSampler(e.plan, e.propagator)
			g.rescore(population)
		}

		population = g.generation(population)

		if onProgress != nil {
			best := g.best.pos
			onProgress(100*float64(gen+1)/float64(g.config.Generations), &best)
		}
		e.yield()
	}

	CandidatesEvaluated.WithLabelValues(algo).Add(float64(g.evaluated))
	SearchesTotal.WithLabelValues(algo, outcomeFound).Inc()
	SearchDuration.WithLabelValues(algo).Observe(time.Since(start).Seconds())
	e.logger.Info("placement search finished",
		zap.String("algorithm", algo),
		zap.Float64("x", g.best.pos.X),
		zap.Float64("y", g.best.pos.Y),
		zap.Float64("score", g.best.fitness),
		zap.Int("evaluated", g.evaluated),
		zap.Duration("elapsed", time.Since(start)))
	return g.best.pos, true, nil
}

// ErrUnknownAlgorithm is returned by Optimize for an unsupported algorithm.
var ErrUnknownAlgorithm = errors.New("unknown placement algorithm")

// Optimize runs the placement search selected by settings.Algorithm. An
// empty algorithm means the grid search.
func (e *Engine) Optimize(ctx context.Context, settings model.Settings, onProgress ProgressFunc) (model.Point, bool, error) {
	switch settings.Algorithm {
	case model.AlgorithmGrid, "":
		return e.FindOptimalPosition(ctx, settings.TxPowerDbm, settings.Band, onProgress)
	case model.AlgorithmGenetic:
		return e.OptimizeGenetic(ctx, settings.TxPowerDbm, settings.Band, DefaultGeneticConfig(), onProgress)
	default:
		return model.Point{}, false, errors.Wrapf(ErrUnknownAlgorithm, "algorithm %q", settings.Algorithm)
	}
}
