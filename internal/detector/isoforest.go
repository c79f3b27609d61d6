package detector

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Default training parameters. Fixed as policy so retraining on the same
// dataset yields the same model.
const (
	DefaultTrees         = 100
	DefaultSubsampleSize = 256
	DefaultContamination = 0.1
	DefaultSeed          = 42
)

const eulerGamma = 0.5772156649015329

// IsolationForest is an ensemble of randomized binary trees. Points that
// isolate in few splits score close to 1 and are treated as outliers.
type IsolationForest struct {
	Trees         []*treeNode `json:"trees"`
	SubsampleSize int         `json:"subsample_size"`
	Contamination float64     `json:"contamination"`
	// Offset is the (1 - contamination) quantile of training scores.
	// Decision(x) = Offset - Score(x); negative means outlier.
	Offset float64 `json:"offset"`
}

type treeNode struct {
	SplitFeature int       `json:"f,omitempty"`
	SplitValue   float64   `json:"v,omitempty"`
	Left         *treeNode `json:"l,omitempty"`
	Right        *treeNode `json:"r,omitempty"`
	Size         int       `json:"n,omitempty"` // leaf only
}

func (n *treeNode) leaf() bool { return n.Left == nil && n.Right == nil }

// TrainIsolationForest fits a forest on scaled feature rows. The seed makes
// training deterministic for a given dataset.
func TrainIsolationForest(rows [][]float64, trees, subsample int, contamination float64, seed int64) (*IsolationForest, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot train on empty data")
	}
	if trees <= 0 {
		trees = DefaultTrees
	}
	if subsample <= 0 {
		subsample = DefaultSubsampleSize
	}
	if subsample > len(rows) {
		subsample = len(rows)
	}
	if contamination <= 0 || contamination >= 1 {
		contamination = DefaultContamination
	}

	rng := rand.New(rand.NewSource(seed))
	heightLimit := int(math.Ceil(math.Log2(float64(subsample))))
	if heightLimit < 1 {
		heightLimit = 1
	}

	f := &IsolationForest{
		Trees:         make([]*treeNode, trees),
		SubsampleSize: subsample,
		Contamination: contamination,
	}
	for i := range f.Trees {
		idx := rng.Perm(len(rows))[:subsample]
		f.Trees[i] = buildTree(rows, idx, 0, heightLimit, rng)
	}

	// Calibrate the outlier threshold on the training scores.
	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = f.Score(row)
	}
	f.Offset = quantile(scores, 1-contamination)
	return f, nil
}

func buildTree(rows [][]float64, idx []int, depth, limit int, rng *rand.Rand) *treeNode {
	if len(idx) <= 1 || depth >= limit {
		return &treeNode{Size: len(idx)}
	}

	feature := rng.Intn(len(rows[idx[0]]))
	lo, hi := rows[idx[0]][feature], rows[idx[0]][feature]
	for _, i := range idx[1:] {
		v := rows[i][feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &treeNode{Size: len(idx)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if rows[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		SplitFeature: feature,
		SplitValue:   split,
		Left:         buildTree(rows, left, depth+1, limit, rng),
		Right:        buildTree(rows, right, depth+1, limit, rng),
	}
}

// Score returns the anomaly score in (0, 1); higher isolates faster.
func (f *IsolationForest) Score(row []float64) float64 {
	total := 0.0
	for _, tree := range f.Trees {
		total += pathLength(tree, row, 0)
	}
	avg := total / float64(len(f.Trees))
	return math.Pow(2, -avg/avgPathLength(f.SubsampleSize))
}

// Decision follows the scikit-learn sign convention: negative values are
// outliers, and the magnitude is the distance from the threshold.
func (f *IsolationForest) Decision(row []float64) float64 {
	return f.Offset - f.Score(row)
}

// IsOutlier reports whether the row scores past the calibrated threshold.
func (f *IsolationForest) IsOutlier(row []float64) bool {
	return f.Decision(row) < 0
}

func pathLength(n *treeNode, row []float64, depth int) float64 {
	if n.leaf() {
		return float64(depth) + avgPathLength(n.Size)
	}
	if row[n.SplitFeature] < n.SplitValue {
		return pathLength(n.Left, row, depth+1)
	}
	return pathLength(n.Right, row, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search among n points.
func avgPathLength(n int) float64 {
	switch {
	case n > 2:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	case n == 2:
		return 1
	default:
		return 0
	}
}

// quantile returns the q-th linear-interpolated quantile of values.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
