package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Vectorizer is a TF-IDF text vectorizer exported from the training job.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NGramRange  [2]int         `json:"ngram_range"`
	StopWords   []string       `json:"stop_words"`
	Lowercase   *bool          `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`

	stopWords map[string]struct{}
}

// LinearModel is a one-vs-rest linear classifier over Vectorizer features.
// For two classes Coef may hold a single row; a positive score selects
// Classes[1].
type LinearModel struct {
	Classes    []string    `json:"classes"`
	Coef       [][]float64 `json:"coef"`
	Intercept  []float64   `json:"intercept"`
	Vectorizer Vectorizer  `json:"vectorizer"`
}

// LoadLinearModel reads a JSON artifact. Paths ending in .gz are
// decompressed first.
func LoadLinearModel(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip artifact %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var m LinearModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if err := m.init(); err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	return &m, nil
}

func (m *LinearModel) init() error {
	features := len(m.Vectorizer.Vocabulary)
	if features == 0 {
		return errors.New("empty vocabulary")
	}
	if len(m.Classes) < 2 {
		return errors.New("need at least two classes")
	}

	rows := len(m.Coef)
	binary := len(m.Classes) == 2 && rows == 1
	if rows != len(m.Classes) && !binary {
		return fmt.Errorf("coef has %d rows for %d classes", rows, len(m.Classes))
	}
	if len(m.Intercept) != rows {
		return fmt.Errorf("intercept has %d values for %d rows", len(m.Intercept), rows)
	}
	for i, row := range m.Coef {
		if len(row) != features {
			return fmt.Errorf("coef row %d has %d weights for %d features", i, len(row), features)
		}
	}
	for term, idx := range m.Vectorizer.Vocabulary {
		if idx < 0 || idx >= features {
			return fmt.Errorf("vocabulary index %d of %q out of range", idx, term)
		}
	}
	if n := len(m.Vectorizer.IDF); n != 0 && n != features {
		return fmt.Errorf("idf has %d values for %d features", n, features)
	}

	v := &m.Vectorizer
	if v.NGramRange[0] <= 0 {
		v.NGramRange[0] = 1
	}
	if v.NGramRange[1] < v.NGramRange[0] {
		v.NGramRange[1] = v.NGramRange[0]
	}
	v.stopWords = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stopWords[w] = struct{}{}
	}
	return nil
}

// Predict returns the label with the highest decision score.
func (m *LinearModel) Predict(text string) (string, error) {
	features := m.Vectorizer.Transform(text)

	scores := make([]float64, len(m.Coef))
	for i, row := range m.Coef {
		score := m.Intercept[i]
		for idx, weight := range features {
			score += row[idx] * weight
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return "", fmt.Errorf("non-finite decision score for row %d", i)
		}
		scores[i] = score
	}

	if len(scores) == 1 {
		if scores[0] > 0 {
			return m.Classes[1], nil
		}
		return m.Classes[0], nil
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return m.Classes[best], nil
}

func (v *Vectorizer) tokens(text string) []string {
	if v.Lowercase == nil || *v.Lowercase {
		text = strings.ToLower(text)
	}
	raw := tokenPattern.FindAllString(text, -1)
	out := raw[:0]
	for _, tok := range raw {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := v.stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Transform maps text to a sparse, l2-normalized feature vector keyed by
// vocabulary index. Terms outside the vocabulary are dropped.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	tokens := v.tokens(text)
	counts := make(map[int]float64)
	for n := v.NGramRange[0]; n <= v.NGramRange[1]; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if idx, ok := v.Vocabulary[gram]; ok {
				counts[idx]++
			}
		}
	}

	var norm float64
	for idx, tf := range counts {
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		if len(v.IDF) > 0 {
			tf *= v.IDF[idx]
		}
		counts[idx] = tf
		norm += tf * tf
	}

	if v.Norm != "none" && norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			counts[idx] /= norm
		}
	}
	return counts
}
