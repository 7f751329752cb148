package experiment

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ParametersName is the learned-parameters file inside an experiment dir.
const ParametersName = "learned_parameters.dat"

// Parameter is one learned tensor in serialized form.
type Parameter struct {
	Name  string
	Shape []int
	Data  []float32
}

// SaveParameters writes the current learnable values as a gob stream.
func (e *Experiment) SaveParameters(path string) error {
	params := make([]Parameter, 0, len(e.model.learnables))
	for _, node := range e.model.learnables {
		t, ok := node.Value().(tensor.Tensor)
		if !ok {
			return fmt.Errorf("experiment: parameter %s has no tensor value", node.Name())
		}
		data, ok := t.Data().([]float32)
		if !ok {
			return fmt.Errorf("experiment: parameter %s is not float32", node.Name())
		}
		cp := make([]float32, len(data))
		copy(cp, data)
		params = append(params, Parameter{
			Name:  node.Name(),
			Shape: []int(t.Shape()),
			Data:  cp,
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parameters (%s): %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(params); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode parameters (%s): %w", path, err)
	}
	return f.Close()
}

// LoadParameters restores learned values into the compiled graph. Every
// learnable must be present with a matching shape.
func (e *Experiment) LoadParameters(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open parameters (%s): %w", path, err)
	}
	defer f.Close()
	var params []Parameter
	if err := gob.NewDecoder(f).Decode(&params); err != nil {
		return fmt.Errorf("decode parameters (%s): %w", path, err)
	}
	byName := make(map[string]Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}
	for _, node := range e.model.learnables {
		p, ok := byName[node.Name()]
		if !ok {
			return fmt.Errorf("experiment: parameters (%s) missing %s", path, node.Name())
		}
		if !shapeEqual(p.Shape, node.Shape()) {
			return fmt.Errorf("experiment: parameter %s has shape %v, graph wants %v",
				p.Name, p.Shape, []int(node.Shape()))
		}
		t := tensor.New(tensor.WithShape(p.Shape...), tensor.WithBacking(p.Data))
		if err := gorgonia.Let(node, t); err != nil {
			return errors.Wrapf(err, "bind parameter %s", p.Name)
		}
	}
	return nil
}

// syncParameters copies learned values from one compiled graph into
// another of the same architecture, matching parameters by name.
func syncParameters(src, dst *model) error {
	byName := make(map[string]*gorgonia.Node, len(src.learnables))
	for _, node := range src.learnables {
		byName[node.Name()] = node
	}
	for _, node := range dst.learnables {
		from, ok := byName[node.Name()]
		if !ok {
			return fmt.Errorf("experiment: no source value for parameter %s", node.Name())
		}
		t, ok := from.Value().(tensor.Tensor)
		if !ok {
			return fmt.Errorf("experiment: parameter %s has no tensor value", from.Name())
		}
		data, ok := t.Data().([]float32)
		if !ok {
			return fmt.Errorf("experiment: parameter %s is not float32", from.Name())
		}
		cp := make([]float32, len(data))
		copy(cp, data)
		nt := tensor.New(tensor.WithShape([]int(t.Shape())...), tensor.WithBacking(cp))
		if err := gorgonia.Let(node, nt); err != nil {
			return errors.Wrapf(err, "sync parameter %s", node.Name())
		}
	}
	return nil
}

func shapeEqual(a []int, b tensor.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i, d := range a {
		if d != b[i] {
			return false
		}
	}
	return true
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report (%s): %w", path, err)
	}
	return nil
}

// WriteReport persists an arbitrary report document as indented JSON.
func WriteReport(path string, v interface{}) error { return writeJSON(path, v) }
