package classifier

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/laptopfinder/backend/internal/domain"
)

const defaultSmoothing = 1.0

// Model is the serialized form of a trained multinomial naive Bayes classifier.
type Model struct {
	// Smoothing is the additive (Laplace) constant; zero means 1.
	Smoothing float64                `yaml:"smoothing"`
	Labels    map[string]LabelCounts `yaml:"labels"`
}

// LabelCounts holds the training statistics of one label.
type LabelCounts struct {
	Documents int            `yaml:"documents"`
	Tokens    map[string]int `yaml:"tokens"`
}

// NaiveBayes predicts the use-case label of a free-text query.
// It is read-only after construction and safe for concurrent use.
type NaiveBayes struct {
	labels     []string
	logPrior   map[string]float64
	logLike    map[string]map[string]float64
	logUnknown map[string]float64
}

// Load reads a YAML model from path.
func Load(path string) (*NaiveBayes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a YAML model from r.
func Decode(r io.Reader) (*NaiveBayes, error) {
	var m Model
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode model: %v", domain.ErrClassifierUnavailable, err)
	}
	return New(m)
}

// New precomputes log probabilities for m.
func New(m Model) (*NaiveBayes, error) {
	if len(m.Labels) == 0 {
		return nil, fmt.Errorf("%w: model has no labels", domain.ErrClassifierUnavailable)
	}
	alpha := m.Smoothing
	if alpha <= 0 {
		alpha = defaultSmoothing
	}

	vocab := make(map[string]struct{})
	totalDocs := 0
	for label, c := range m.Labels {
		if c.Documents < 0 {
			return nil, fmt.Errorf("%w: label %q has negative document count", domain.ErrClassifierUnavailable, label)
		}
		totalDocs += c.Documents
		for tok := range c.Tokens {
			vocab[tok] = struct{}{}
		}
	}

	nb := &NaiveBayes{
		logPrior:   make(map[string]float64, len(m.Labels)),
		logLike:    make(map[string]map[string]float64, len(m.Labels)),
		logUnknown: make(map[string]float64, len(m.Labels)),
	}
	v := float64(len(vocab))
	for label, c := range m.Labels {
		nb.labels = append(nb.labels, label)
		nb.logPrior[label] = math.Log((float64(c.Documents) + alpha) / (float64(totalDocs) + alpha*float64(len(m.Labels))))

		total := 0
		for _, n := range c.Tokens {
			total += n
		}
		denom := float64(total) + alpha*v
		like := make(map[string]float64, len(c.Tokens))
		for tok, n := range c.Tokens {
			like[tok] = math.Log((float64(n) + alpha) / denom)
		}
		nb.logLike[label] = like
		nb.logUnknown[label] = math.Log(alpha / denom)
	}
	sort.Strings(nb.labels)
	return nb, nil
}

// Labels returns the known labels in sorted order.
func (nb *NaiveBayes) Labels() []string {
	return append([]string(nil), nb.labels...)
}

// Analyze returns the posterior of every label. Tokens outside the vocabulary are ignored,
// so a query with no known tokens yields the priors.
func (nb *NaiveBayes) Analyze(ctx context.Context, text string) (*domain.QueryAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := nb.known(Tokenize(text))
	scores := make(map[string]float64, len(nb.labels))
	best := math.Inf(-1)
	for _, label := range nb.labels {
		s := nb.logPrior[label]
		like := nb.logLike[label]
		for _, tok := range tokens {
			if l, ok := like[tok]; ok {
				s += l
			} else {
				s += nb.logUnknown[label]
			}
		}
		scores[label] = s
		if s > best {
			best = s
		}
	}

	// log-sum-exp normalization
	sum := 0.0
	for _, s := range scores {
		sum += math.Exp(s - best)
	}
	analysis := &domain.QueryAnalysis{Categories: make(map[string]float64, len(scores))}
	top := -1.0
	for _, label := range nb.labels {
		p := math.Exp(scores[label]-best) / sum
		analysis.Categories[label] = p
		if p > top {
			top = p
			analysis.PredictedCategory = label
		}
	}
	return analysis, nil
}

func (nb *NaiveBayes) known(tokens []string) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		for _, like := range nb.logLike {
			if _, ok := like[tok]; ok {
				out = append(out, tok)
				break
			}
		}
	}
	return out
}

var tokenRegex = regexp.MustCompile(`[a-z0-9]+(?:[+#][a-z0-9+#]*)?`)

// Tokenize lowercases text and splits it into alphanumeric words.
func Tokenize(text string) []string {
	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}
