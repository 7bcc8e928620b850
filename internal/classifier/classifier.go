// Package classifier assigns a category and a priority to ticket text, either
// with trained linear models loaded from disk or with a keyword heuristic.
package classifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	ModeModel     = "model"
	ModeHeuristic = "heuristic"

	categoryArtifact = "category_model"
	priorityArtifact = "priority_model"
)

type Prediction struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// Classifier is read-only after construction and safe for concurrent use.
type Classifier struct {
	category *LinearModel
	priority *LinearModel
}

// NewHeuristic returns a classifier that never uses trained models.
func NewHeuristic() *Classifier {
	return &Classifier{}
}

// NewWithModels returns a classifier in model mode.
func NewWithModels(category, priority *LinearModel) *Classifier {
	return &Classifier{category: category, priority: priority}
}

// Load looks for both artifacts in dir. If either one is missing or unreadable
// the classifier falls back to heuristic mode; Load itself never fails.
func Load(dir string, logger *zap.Logger) *Classifier {
	category, err := loadArtifact(dir, categoryArtifact)
	if err != nil {
		logger.Warn("category model unavailable, using heuristic classification", zap.String("dir", dir), zap.Error(err))
		return NewHeuristic()
	}
	priority, err := loadArtifact(dir, priorityArtifact)
	if err != nil {
		logger.Warn("priority model unavailable, using heuristic classification", zap.String("dir", dir), zap.Error(err))
		return NewHeuristic()
	}

	logger.Info("classifier models loaded",
		zap.String("dir", dir),
		zap.Strings("categories", category.Classes),
		zap.Strings("priorities", priority.Classes),
	)
	return NewWithModels(category, priority)
}

func loadArtifact(dir, name string) (*LinearModel, error) {
	for _, ext := range []string{".json.gz", ".json"} {
		path := filepath.Join(dir, name+ext)
		m, err := LoadLinearModel(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return m, err
	}
	return nil, fmt.Errorf("%s not found: %w", name, os.ErrNotExist)
}

func (c *Classifier) Mode() string {
	if c.category != nil && c.priority != nil {
		return ModeModel
	}
	return ModeHeuristic
}

// Predict classifies text. In model mode a predicted billing category without
// any billing keyword in the text is replaced by the heuristic result.
func (c *Classifier) Predict(text string) (Prediction, error) {
	if c.Mode() == ModeHeuristic {
		return heuristicClassify(text), nil
	}

	category, err := c.category.Predict(text)
	if err != nil {
		return Prediction{}, fmt.Errorf("category model: %w", err)
	}
	priority, err := c.priority.Predict(text)
	if err != nil {
		return Prediction{}, fmt.Errorf("priority model: %w", err)
	}

	if category == CategoryBilling && !containsAny(strings.ToLower(text), billingKeywords) {
		return heuristicClassify(text), nil
	}
	return Prediction{Category: category, Priority: priority}, nil
}

func (c *Classifier) ExtractEntities(text string) map[string]string {
	return ExtractEntities(text)
}
