package experiment

import (
	"math/rand"

	"gorgonia.org/tensor"

	"github.com/deepsix-ml/deepsix/internal/dataset"
)

// batcher iterates one dataset part in fixed-size minibatches over a
// shuffled index permutation. The trailing remainder is dropped: the graph
// is compiled for a fixed batch dimension. Tensor backings are reused
// across batches.
type batcher struct {
	arrays  *dataset.Arrays
	batch   int
	classes int
	rng     *rand.Rand

	perm   []int
	pos    int
	xs     []float32
	ys     []float32
	labels []int32
	xT     tensor.Tensor
	yT     tensor.Tensor
}

// clampBatch bounds a batch size to the part size.
func clampBatch(batch, n int) int {
	if batch > n {
		return n
	}
	return batch
}

func newBatcher(a *dataset.Arrays, batch, classes int, rng *rand.Rand, shuffle bool) *batcher {
	n := a.Count()
	batch = clampBatch(batch, n)
	features := a.Features()
	b := &batcher{
		arrays:  a,
		batch:   batch,
		classes: classes,
		rng:     rng,
		perm:    make([]int, n),
		xs:      make([]float32, batch*features),
		ys:      make([]float32, batch*classes),
		labels:  make([]int32, batch),
	}
	for i := range b.perm {
		b.perm[i] = i
	}
	if shuffle {
		rng.Shuffle(n, func(i, j int) { b.perm[i], b.perm[j] = b.perm[j], b.perm[i] })
	}
	shape := append([]int{batch}, a.Shape[1:]...)
	b.xT = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(b.xs))
	b.yT = tensor.New(tensor.WithShape(batch, classes), tensor.WithBacking(b.ys))
	return b
}

// next gathers the following minibatch. ok is false once fewer than one
// full batch remains.
func (b *batcher) next() (xT, yT tensor.Tensor, labels []int32, ok bool) {
	if b.batch == 0 || b.pos+b.batch > len(b.perm) {
		return nil, nil, nil, false
	}
	features := b.arrays.Features()
	for i := 0; i < b.batch; i++ {
		idx := b.perm[b.pos+i]
		copy(b.xs[i*features:(i+1)*features], b.arrays.Data[idx*features:(idx+1)*features])
		label := b.arrays.Labels[idx]
		b.labels[i] = label
		row := b.ys[i*b.classes : (i+1)*b.classes]
		for j := range row {
			row[j] = 0
		}
		row[label] = 1
	}
	b.pos += b.batch
	return b.xT, b.yT, b.labels, true
}

// batches returns how many full minibatches one pass yields.
func (b *batcher) batches() int {
	if b.batch == 0 {
		return 0
	}
	return len(b.perm) / b.batch
}
