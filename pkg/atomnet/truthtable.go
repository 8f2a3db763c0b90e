package atomnet

import (
	"fmt"
	"math/big"
)

// LogicValue is one entry of a truth-table row.
type LogicValue int

const (
	LogicFalse LogicValue = iota
	LogicTrue
	LogicDontCare
	LogicUnknown
)

func (v LogicValue) String() string {
	switch v {
	case LogicFalse:
		return "0"
	case LogicTrue:
		return "1"
	case LogicDontCare:
		return "-"
	case LogicUnknown:
		return "u"
	default:
		return fmt.Sprintf("LogicValue(%d)", int(v))
	}
}

// TruthRow is one row of a truth table: num_inputs input values followed
// by a single output value.
type TruthRow []LogicValue

// TruthTable holds a block's truth table in its source encoding: rows of
// {TRUE,FALSE,DONT_CARE} inputs plus an output value, whose on-set/
// off-set interpretation is carried by the first row. A combinational
// ("names") block has zero or more rows of width
// NumInputs()+1; a sequential ("latch") block has exactly one 1x1 row
// holding its initial value.
type TruthTable struct {
	Rows []TruthRow
}

// NumInputs returns the input width implied by the table, or 0 for an
// empty table.
func (t *TruthTable) NumInputs() int {
	if t == nil || len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0]) - 1
}

// IsOnSet reports whether the table's rows enumerate minterms that drive
// the output TRUE (an on-set encoding) as opposed to minterms that drive
// it FALSE (an off-set encoding). The convention, taken from the first
// row's output value, is undefined by the source format when rows
// disagree; this implementation rejects such tables rather than
// guessing. An empty table is defined to be an on-set encoding of
// constant zero.
func (t *TruthTable) IsOnSet() (bool, error) {
	if t == nil || len(t.Rows) == 0 {
		return true, nil
	}
	first := t.Rows[0][len(t.Rows[0])-1]
	if first != LogicTrue && first != LogicFalse {
		return false, fmt.Errorf("atomnet: truth table first-row output must be TRUE or FALSE, got %v", first)
	}
	for i, row := range t.Rows[1:] {
		if len(row) != len(t.Rows[0]) {
			return false, fmt.Errorf("atomnet: truth table row %d has width %d, want %d", i+1, len(row), len(t.Rows[0]))
		}
		if row[len(row)-1] != first {
			return false, fmt.Errorf("atomnet: truth table has inconsistent output values across rows (row 0 is %v, row %d is %v)", first, i+1, row[len(row)-1])
		}
	}
	return first == LogicTrue, nil
}

// ExpandMask expands the table to a full LUT mask of length 2^k (k =
// NumInputs()), with bit i set exactly when input assignment i (bit j of
// i is input j, LSB-first) evaluates the function TRUE.
func (t *TruthTable) ExpandMask() (*big.Int, error) {
	onSet, err := t.IsOnSet()
	if err != nil {
		return nil, err
	}
	k := t.NumInputs()
	mask := new(big.Int)
	for rowIdx, row := range t.Rows {
		if err := orMinterms(mask, row[:k], k); err != nil {
			return nil, fmt.Errorf("atomnet: truth table row %d: %w", rowIdx, err)
		}
	}
	if !onSet {
		numMinterms := uint(1) << uint(k)
		full := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), numMinterms), big.NewInt(1))
		mask.Xor(mask, full)
	}
	return mask, nil
}

// orMinterms sets, in mask, every minterm bit matched by the input
// pattern (DONT_CARE positions match both 0 and 1).
func orMinterms(mask *big.Int, inputs []LogicValue, k int) error {
	var walk func(idx int, assignment int) error
	walk = func(idx int, assignment int) error {
		if idx == k {
			mask.SetBit(mask, assignment, 1)
			return nil
		}
		switch inputs[idx] {
		case LogicFalse:
			return walk(idx+1, assignment)
		case LogicTrue:
			return walk(idx+1, assignment|(1<<uint(idx)))
		case LogicDontCare:
			if err := walk(idx+1, assignment); err != nil {
				return err
			}
			return walk(idx+1, assignment|(1<<uint(idx)))
		default:
			return fmt.Errorf("atomnet: input position %d has non-input value %v", idx, inputs[idx])
		}
	}
	return walk(0, 0)
}
