package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
)

func TestCombineUnits(t *testing.T) {
	cases := []struct {
		name  string
		op    formuladomain.Operator
		left  string
		right string
		want  string
	}{
		{"add equal", formuladomain.OperatorAdd, "kWh", "kWh", "kWh"},
		{"add left empty", formuladomain.OperatorAdd, "", "kWh", "kWh"},
		{"add right empty", formuladomain.OperatorAdd, "m³", "", "m³"},
		{"add mismatch keeps composite label", formuladomain.OperatorAdd, "kWh", "m³", "kWh+m³"},
		{"subtract mismatch", formuladomain.OperatorSubtract, "kWh", "m³", "kWh-m³"},
		{"multiply by percent", formuladomain.OperatorMultiply, "kWh", "%", "kWh"},
		{"multiply by plain number", formuladomain.OperatorMultiply, "", "m³", "m³"},
		{"multiply two units", formuladomain.OperatorMultiply, "kWh", "m³", "kWh×m³"},
		{"divide by dimensionless", formuladomain.OperatorDivide, "kWh", "%", "kWh"},
		{"divide equal cancels", formuladomain.OperatorDivide, "kWh", "kWh", ""},
		{"divide distinct", formuladomain.OperatorDivide, "kWh", "m³", "kWh/m³"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, combineUnits(tc.op, tc.left, tc.right))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "10.0", formatValue(10))
	assert.Equal(t, "10.5", formatValue(10.5))
	assert.Equal(t, "10.33", formatValue(10.333))
	assert.Equal(t, "-3.5", formatValue(-3.5))
}
