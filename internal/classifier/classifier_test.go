package classifier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHeuristicClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		priority string
	}{
		{"refund is billing", "I would like a refund for last month", CategoryBilling, PriorityLow},
		{"billing wins over account", "Payment failed when I tried to login", CategoryBilling, PriorityHigh},
		{"account", "Forgot my password", CategoryAccount, PriorityLow},
		{"technical", "The API returns a timeout", CategoryTechnical, PriorityLow},
		{"sales", "What is the price of the premium plan?", CategorySales, PriorityLow},
		{"general", "Hello there", CategoryGeneral, PriorityLow},
		{"urgent phrase", "Dashboard is NOT WORKING", CategoryGeneral, PriorityHigh},
		{"long text is medium", strings.Repeat("please help me with this ", 6), CategoryGeneral, PriorityMedium},
		{"exactly 120 is low", strings.Repeat("x", 120), CategoryGeneral, PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heuristicClassify(tt.text)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.priority, got.Priority)
		})
	}
}

func TestExtractEntities(t *testing.T) {
	got := ExtractEntities("contact me at a@b.com regarding error 404")
	assert.Equal(t, map[string]string{"email": "a@b.com", "error_code": "error 404"}, got)

	got = ExtractEntities("crash with code 0x1F3 and ERROR 500, mail x@y.org or z@w.org")
	assert.Equal(t, "x@y.org", got["email"])
	assert.Equal(t, "0x1F3", got["error_code"])

	assert.Empty(t, ExtractEntities("nothing to see here"))
}

func TestExtractEntities_UnicodeDigitsAndSpaces(t *testing.T) {
	got := ExtractEntities("got ERROR \u0664\u0660\u0664 from the portal")
	assert.Equal(t, "ERROR \u0664\u0660\u0664", got["error_code"])

	got = ExtractEntities("error\u00a0500 again")
	assert.Equal(t, "error\u00a0500", got["error_code"])

	got = ExtractEntities("error\u3000\uff15\uff10\uff10")
	assert.Equal(t, "error\u3000\uff15\uff10\uff10", got["error_code"])
}

func tinyModel(classes []string, coef [][]float64) *LinearModel {
	return &LinearModel{
		Classes:   classes,
		Coef:      coef,
		Intercept: make([]float64, len(coef)),
		Vectorizer: Vectorizer{
			Vocabulary: map[string]int{"refund": 0, "crash": 1, "server crash": 2},
			IDF:        []float64{1, 1, 1},
			NGramRange: [2]int{1, 2},
		},
	}
}

func mustInit(t *testing.T, m *LinearModel) *LinearModel {
	t.Helper()
	require.NoError(t, m.init())
	return m
}

func TestLinearModel_Predict(t *testing.T) {
	m := mustInit(t, tinyModel(
		[]string{CategoryBilling, CategoryTechnical, CategoryGeneral},
		[][]float64{{2, 0, 0}, {0, 1, 1}, {0, 0, 0}},
	))

	label, err := m.Predict("The server crash again")
	require.NoError(t, err)
	assert.Equal(t, CategoryTechnical, label)

	label, err = m.Predict("Refund please")
	require.NoError(t, err)
	assert.Equal(t, CategoryBilling, label)
}

func TestLinearModel_Binary(t *testing.T) {
	m := mustInit(t, tinyModel([]string{PriorityLow, PriorityHigh}, [][]float64{{0, 3, 0}}))

	label, err := m.Predict("crash")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, label)

	label, err = m.Predict("refund")
	require.NoError(t, err)
	assert.Equal(t, PriorityLow, label)
}

func TestVectorizer_Transform(t *testing.T) {
	m := mustInit(t, tinyModel([]string{"a", "b"}, [][]float64{{0, 0, 0}}))
	m.Vectorizer.IDF = []float64{1, 2, 2}

	vec := m.Vectorizer.Transform("server crash")
	// crash: 1*2, "server crash": 1*2, normalized to 1/sqrt(2) each
	assert.InDelta(t, 0.7071, vec[1], 1e-4)
	assert.InDelta(t, 0.7071, vec[2], 1e-4)
	_, ok := vec[0]
	assert.False(t, ok)
}

func TestLinearModel_InitRejectsShapeMismatch(t *testing.T) {
	m := tinyModel([]string{"a", "b", "c"}, [][]float64{{1, 2, 3}})
	assert.Error(t, m.init())

	m = tinyModel([]string{"a", "b"}, [][]float64{{1, 2}})
	assert.Error(t, m.init())
}

func writeArtifact(t *testing.T, dir, name string, m *LinearModel, compress bool) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)

	if !compress {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644))
		return
	}
	f, err := os.Create(filepath.Join(dir, name+".json.gz"))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestLoad_FallsBackToHeuristic(t *testing.T) {
	c := Load(t.TempDir(), zap.NewNop())
	assert.Equal(t, ModeHeuristic, c.Mode())

	p, err := c.Predict("refund")
	require.NoError(t, err)
	assert.Equal(t, CategoryBilling, p.Category)
}

func TestLoad_OnlyOneArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, categoryArtifact, tinyModel([]string{"a", "b"}, [][]float64{{1, 1, 1}}), false)

	c := Load(dir, zap.NewNop())
	assert.Equal(t, ModeHeuristic, c.Mode())
}

func TestLoad_ModelMode(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, categoryArtifact, tinyModel(
		[]string{CategoryBilling, CategoryTechnical},
		[][]float64{{5, 0, 0}, {0, 1, 1}},
	), true)
	writeArtifact(t, dir, priorityArtifact, tinyModel(
		[]string{PriorityLow, PriorityHigh},
		[][]float64{{0, 2, 0}},
	), false)

	c := Load(dir, zap.NewNop())
	require.Equal(t, ModeModel, c.Mode())

	p, err := c.Predict("server crash")
	require.NoError(t, err)
	assert.Equal(t, Prediction{Category: CategoryTechnical, Priority: PriorityHigh}, p)

	p, err = c.Predict("refund")
	require.NoError(t, err)
	assert.Equal(t, CategoryBilling, p.Category)
}

func TestPredict_BillingCrossCheck(t *testing.T) {
	// a model that always says billing, with a bias that ignores the text
	category := mustInit(t, &LinearModel{
		Classes:    []string{CategoryBilling, CategoryGeneral},
		Coef:       [][]float64{{0, 0, 0}, {0, 0, 0}},
		Intercept:  []float64{1, 0},
		Vectorizer: tinyModel(nil, nil).Vectorizer,
	})
	priority := mustInit(t, tinyModel([]string{PriorityLow, PriorityHigh}, [][]float64{{0, 0, 0}}))
	c := NewWithModels(category, priority)

	p, err := c.Predict("my password reset link never arrives")
	require.NoError(t, err)
	assert.Equal(t, CategoryAccount, p.Category, "no billing keyword, so the heuristic decides")

	p, err = c.Predict("the invoice is wrong")
	require.NoError(t, err)
	assert.Equal(t, CategoryBilling, p.Category)
	assert.Equal(t, PriorityLow, p.Priority)
}
