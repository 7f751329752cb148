package experiment

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const (
	NetworkMLP = "mlp"
	NetworkCNN = "cnn"
)

// model is a compiled classifier graph bound to a fixed batch size.
type model struct {
	g          *gorgonia.ExprGraph
	x, y       *gorgonia.Node
	out, cost  *gorgonia.Node
	learnables gorgonia.Nodes

	outVal  gorgonia.Value
	costVal gorgonia.Value

	vm     gorgonia.VM
	solver gorgonia.Solver

	batch   int
	classes int
}

// compile builds the graph for one architecture. shape is (channels,
// height, width) of a single image.
func compile(cfg Config, shape [3]int, batch int) (*model, error) {
	m := &model{
		g:       gorgonia.NewGraph(),
		batch:   batch,
		classes: cfg.Classes,
	}
	m.x = gorgonia.NewTensor(m.g, tensor.Float32, 4,
		gorgonia.WithShape(batch, shape[0], shape[1], shape[2]),
		gorgonia.WithName("x"))
	m.y = gorgonia.NewMatrix(m.g, tensor.Float32,
		gorgonia.WithShape(batch, cfg.Classes),
		gorgonia.WithName("y"))

	var err error
	switch cfg.Network {
	case NetworkMLP:
		err = m.buildMLP(cfg, shape)
	case NetworkCNN:
		err = m.buildCNN(cfg, shape)
	default:
		return nil, fmt.Errorf("experiment: unknown network %q", cfg.Network)
	}
	if err != nil {
		return nil, err
	}

	if err := m.buildLoss(); err != nil {
		return nil, err
	}
	if _, err := gorgonia.Grad(m.cost, m.learnables...); err != nil {
		return nil, errors.Wrap(err, "backpropagation")
	}
	m.vm = gorgonia.NewTapeMachine(m.g, gorgonia.BindDualValues(m.learnables...))
	m.solver = gorgonia.NewMomentum(
		gorgonia.WithLearnRate(cfg.LearnRate),
		gorgonia.WithMomentum(cfg.Momentum))
	return m, nil
}

// buildMLP: flatten -> dropout -> dense -> softmax.
func (m *model) buildMLP(cfg Config, shape [3]int) error {
	features := shape[0] * shape[1] * shape[2]
	flat, err := gorgonia.Reshape(m.x, tensor.Shape{m.batch, features})
	if err != nil {
		return errors.Wrap(err, "flatten input")
	}
	return m.head(cfg, flat, features)
}

// buildCNN: two conv/rectify/maxpool blocks, then the dense softmax head.
// 5x5 kernels without padding, 2x2 pooling.
func (m *model) buildCNN(cfg Config, shape [3]int) error {
	const kernel = 5
	w0 := gorgonia.NewTensor(m.g, tensor.Float32, 4,
		gorgonia.WithShape(8, shape[0], kernel, kernel),
		gorgonia.WithName("w0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	w1 := gorgonia.NewTensor(m.g, tensor.Float32, 4,
		gorgonia.WithShape(8, 8, kernel, kernel),
		gorgonia.WithName("w1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	m.learnables = append(m.learnables, w0, w1)

	block := func(in *gorgonia.Node, w *gorgonia.Node) (*gorgonia.Node, error) {
		c, err := gorgonia.Conv2d(in, w, tensor.Shape{kernel, kernel},
			[]int{0, 0}, []int{1, 1}, []int{1, 1})
		if err != nil {
			return nil, errors.Wrap(err, "convolution")
		}
		a, err := gorgonia.Rectify(c)
		if err != nil {
			return nil, errors.Wrap(err, "activation")
		}
		p, err := gorgonia.MaxPool2D(a, tensor.Shape{2, 2}, []int{0, 0}, []int{2, 2})
		if err != nil {
			return nil, errors.Wrap(err, "pooling")
		}
		return p, nil
	}

	h, w := shape[1], shape[2]
	out, err := block(m.x, w0)
	if err != nil {
		return err
	}
	h, w = (h-kernel+1)/2, (w-kernel+1)/2
	out, err = block(out, w1)
	if err != nil {
		return err
	}
	h, w = (h-kernel+1)/2, (w-kernel+1)/2

	features := 8 * h * w
	flat, err := gorgonia.Reshape(out, tensor.Shape{m.batch, features})
	if err != nil {
		return errors.Wrap(err, "flatten feature maps")
	}
	return m.head(cfg, flat, features)
}

// head appends dropout, the dense layer, and softmax output.
func (m *model) head(cfg Config, flat *gorgonia.Node, features int) error {
	in := flat
	if cfg.Dropout > 0 {
		dropped, err := gorgonia.Dropout(flat, cfg.Dropout)
		if err != nil {
			return errors.Wrap(err, "dropout")
		}
		in = dropped
	}
	wd := gorgonia.NewMatrix(m.g, tensor.Float32,
		gorgonia.WithShape(features, cfg.Classes),
		gorgonia.WithName("wd"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	m.learnables = append(m.learnables, wd)
	dense, err := gorgonia.Mul(in, wd)
	if err != nil {
		return errors.Wrap(err, "dense layer")
	}
	out, err := gorgonia.SoftMax(dense)
	if err != nil {
		return errors.Wrap(err, "softmax")
	}
	m.out = out
	gorgonia.Read(m.out, &m.outVal)
	return nil
}

// buildLoss: categorical cross-entropy, averaged over the batch.
func (m *model) buildLoss() error {
	logOut, err := gorgonia.Log(m.out)
	if err != nil {
		return errors.Wrap(err, "log output")
	}
	picked, err := gorgonia.HadamardProd(logOut, m.y)
	if err != nil {
		return errors.Wrap(err, "pick target log-likelihood")
	}
	perRow, err := gorgonia.Sum(picked, 1)
	if err != nil {
		return errors.Wrap(err, "sum rows")
	}
	mean, err := gorgonia.Mean(perRow)
	if err != nil {
		return errors.Wrap(err, "mean loss")
	}
	cost, err := gorgonia.Neg(mean)
	if err != nil {
		return errors.Wrap(err, "negate loss")
	}
	m.cost = cost
	gorgonia.Read(m.cost, &m.costVal)
	return nil
}

// run executes one minibatch: forward pass always, a solver step when
// train is set. Returns the batch loss and the argmax prediction per row.
func (m *model) run(xT, yT tensor.Tensor, train bool) (float64, []int, error) {
	if err := gorgonia.Let(m.x, xT); err != nil {
		return 0, nil, errors.Wrap(err, "bind inputs")
	}
	if err := gorgonia.Let(m.y, yT); err != nil {
		return 0, nil, errors.Wrap(err, "bind targets")
	}
	if err := m.vm.RunAll(); err != nil {
		return 0, nil, errors.Wrap(err, "run graph")
	}
	if train {
		if err := m.solver.Step(gorgonia.NodesToValueGrads(m.learnables)); err != nil {
			m.vm.Reset()
			return 0, nil, errors.Wrap(err, "solver step")
		}
	}
	loss := float64(m.costVal.Data().(float32))
	predicted := argmaxRows(m.outVal.Data().([]float32), m.batch, m.classes)
	m.vm.Reset()
	return loss, predicted, nil
}

func argmaxRows(values []float32, rows, cols int) []int {
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		row := values[i*cols : (i+1)*cols]
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

func (m *model) Close() error {
	if m.vm != nil {
		return m.vm.Close()
	}
	return nil
}
