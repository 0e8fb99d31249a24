package loss

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/labels"
)

// Mode selects the similarity term of the objective.
type Mode int

const (
	// ModeSimilarity is the pairwise cosine MSE loss.
	ModeSimilarity Mode = iota
	// ModeTriplet is the label-mined triplet loss.
	ModeTriplet
)

// String returns the name used on the command line and in run names.
func (m Mode) String() string {
	switch m {
	case ModeSimilarity:
		return "MSELoss"
	case ModeTriplet:
		return "TripletLoss"
	default:
		return "Unknown"
	}
}

// ParseMode parses a loss function name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "MSELoss":
		return ModeSimilarity, nil
	case "TripletLoss":
		return ModeTriplet, nil
	default:
		return 0, fmt.Errorf("loss: unknown loss function %q", s)
	}
}

const (
	DefaultBeta  = 0.001
	DefaultGamma = 1.0
)

// Result is the value and gradient of the objective for one batch.
type Result struct {
	Total      float64
	Similarity float64
	Push       float64
	Balance    float64

	// Pairwise is set in ModeSimilarity.
	Pairwise SimilarityTerms
	// Triplets is set in ModeTriplet.
	Triplets TripletTerms

	// GradS1 and GradS2 are dTotal/dlogits for each modality.
	GradS1 *mat.Dense
	GradS2 *mat.Dense
}

// Option configures a Composer.
type Option func(*Composer)

// WithBeta sets the weight of the push term.
func WithBeta(beta float64) Option {
	return func(c *Composer) { c.beta = beta }
}

// WithGamma sets the weight of the balance term.
func WithGamma(gamma float64) Option {
	return func(c *Composer) { c.gamma = gamma }
}

// WithMargin sets the triplet margin.
func WithMargin(margin float64) Option {
	return func(c *Composer) { c.margin = margin }
}

// WithLegacyProductTerm multiplies the two crossed-pair terms of the
// similarity loss instead of adding them.
func WithLegacyProductTerm(on bool) Option {
	return func(c *Composer) { c.legacy = on }
}

// Composer computes the training objective.
type Composer struct {
	mode   Mode
	bits   int
	beta   float64
	gamma  float64
	margin float64
	legacy bool
}

// NewComposer creates a composer for codes of the given length.
func NewComposer(mode Mode, bits int, opts ...Option) (*Composer, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("loss: bits must be positive, got %d", bits)
	}
	if mode != ModeSimilarity && mode != ModeTriplet {
		return nil, fmt.Errorf("loss: unknown mode %d", mode)
	}
	c := &Composer{
		mode:   mode,
		bits:   bits,
		beta:   DefaultBeta,
		gamma:  DefaultGamma,
		margin: DefaultMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mode returns the configured mode.
func (c *Composer) Mode() Mode { return c.mode }

// Compute evaluates the objective for a batch of S1 and S2 logits
// (B×bits each) with their shared labels.
func (c *Composer) Compute(s1, s2 *mat.Dense, ls []labels.Set) (Result, error) {
	if err := checkShapes(s1, s2, ls, c.bits); err != nil {
		return Result{}, err
	}
	if len(ls) < 2 {
		return Result{}, ErrBatchTooSmall
	}

	var (
		res    Result
		g1, g2 *mat.Dense
		err    error
	)
	switch c.mode {
	case ModeTriplet:
		res.Triplets, g1, g2, err = Triplet(s1, s2, ls, c.margin)
		res.Similarity = res.Triplets.Total
	default:
		res.Pairwise, g1, g2, err = Similarity(s1, s2, ls, c.legacy)
		res.Similarity = res.Pairwise.Total
	}
	if err != nil {
		return Result{}, err
	}

	push, pg := Push(s1, s2)
	balance, bg := Balance(s1, s2)
	res.Push = push
	res.Balance = balance

	pushW := -c.beta / float64(c.bits)
	res.Total = res.Similarity + pushW*push + c.gamma*balance

	for m, g := range []*mat.Dense{g1, g2} {
		var scaled mat.Dense
		scaled.Scale(pushW, pg[m])
		g.Add(g, &scaled)
		scaled.Scale(c.gamma, bg[m])
		g.Add(g, &scaled)
	}
	res.GradS1 = g1
	res.GradS2 = g2
	return res, nil
}
