// Package classifier 提供基于预训练线性模型的推理
package classifier

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrFeatureMismatch 表示输入特征数量与模型不一致
	ErrFeatureMismatch = errors.New("feature count mismatch")
	// ErrInvalidModel 表示模型文件内容不完整或自相矛盾
	ErrInvalidModel = errors.New("invalid classifier model")
)

// Class 是一个输出类别的线性权重
type Class struct {
	Label   string    `yaml:"label"`
	Bias    float64   `yaml:"bias"`
	Weights []float64 `yaml:"weights"`
}

// Model 是多分类逻辑回归模型，从 YAML 文件加载
type Model struct {
	Name     string   `yaml:"name"`
	Features []string `yaml:"features"`
	Classes  []Class  `yaml:"classes"`
}

// Prediction 是一次推理结果
type Prediction struct {
	Label       string             `json:"label"`
	Probability float64            `json:"probability"`
	Scores      map[string]float64 `json:"scores"`
}

// Predictor 对特征向量做推理
type Predictor interface {
	Predict(features []float64) (*Prediction, error)
}

// Load 读取并校验模型文件
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier model: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 格式的模型
func Parse(data []byte) (*Model, error) {
	var model Model
	if err := yaml.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("decode classifier model: %w", err)
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	return &model, nil
}

func (m *Model) validate() error {
	if len(m.Features) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidModel)
	}
	if len(m.Classes) < 2 {
		return fmt.Errorf("%w: at least two classes are required", ErrInvalidModel)
	}

	seen := make(map[string]bool, len(m.Classes))
	for _, class := range m.Classes {
		label := strings.TrimSpace(class.Label)
		if label == "" {
			return fmt.Errorf("%w: class without label", ErrInvalidModel)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate class %q", ErrInvalidModel, label)
		}
		seen[label] = true
		if len(class.Weights) != len(m.Features) {
			return fmt.Errorf("%w: class %q has %d weights for %d features", ErrInvalidModel, label, len(class.Weights), len(m.Features))
		}
	}
	return nil
}

// FeatureNames 返回特征顺序，调用方按此顺序传入特征值
func (m *Model) FeatureNames() []string {
	names := make([]string, len(m.Features))
	copy(names, m.Features)
	return names
}

// Predict 计算 softmax 概率，返回概率最高的类别
// 概率相同时取标签字典序较小者
func (m *Model) Predict(features []float64) (*Prediction, error) {
	if len(features) != len(m.Features) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(features), len(m.Features))
	}

	logits := make([]float64, len(m.Classes))
	maxLogit := math.Inf(-1)
	for i, class := range m.Classes {
		z := class.Bias
		for j, w := range class.Weights {
			z += w * features[j]
		}
		logits[i] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	var sum float64
	for i, z := range logits {
		logits[i] = math.Exp(z - maxLogit)
		sum += logits[i]
	}

	scores := make(map[string]float64, len(m.Classes))
	labels := make([]string, 0, len(m.Classes))
	for i, class := range m.Classes {
		scores[class.Label] = logits[i] / sum
		labels = append(labels, class.Label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if scores[label] > scores[best] {
			best = label
		}
	}

	return &Prediction{Label: best, Probability: scores[best], Scores: scores}, nil
}
