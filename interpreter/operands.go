package interpreter

import (
	"errors"
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/model"
)

var (
	errOperands = errors.New("operand type mismatch")
	errUnknown  = errors.New("unknown operator")
	errResource = errors.New("missing resource")
)

// numbers reads the last n operands as numbers
func numbers(operands []core.Object, n int) ([]float64, error) {
	if len(operands) < n {
		return nil, fmt.Errorf("%w: want %d operands, got %d", errOperands, n, len(operands))
	}
	args := operands[len(operands)-n:]
	out := make([]float64, n)
	for i, o := range args {
		v, ok := core.Number(o)
		if !ok {
			return nil, fmt.Errorf("%w: operand %d is %s", errOperands, i+1, o.Type())
		}
		out[i] = v
	}
	return out, nil
}

// allNumbers reads every operand as a number
func allNumbers(operands []core.Object) ([]float64, error) {
	return numbers(operands, len(operands))
}

func nameOperand(operands []core.Object) (string, error) {
	if len(operands) == 0 {
		return "", fmt.Errorf("%w: want a name", errOperands)
	}
	n, ok := operands[len(operands)-1].(core.Name)
	if !ok {
		return "", fmt.Errorf("%w: want a name, got %s", errOperands, operands[len(operands)-1].Type())
	}
	return string(n), nil
}

func stringOperand(operands []core.Object) ([]byte, error) {
	if len(operands) == 0 {
		return nil, fmt.Errorf("%w: want a string", errOperands)
	}
	s, ok := operands[len(operands)-1].(core.String)
	if !ok {
		return nil, fmt.Errorf("%w: want a string, got %s", errOperands, operands[len(operands)-1].Type())
	}
	return []byte(s), nil
}

func matrixOf(v []float64) model.Matrix {
	return model.Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
}
