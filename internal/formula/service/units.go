package service

import formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"

// dimensionless units vanish in multiplication and division. Percent counts
// as dimensionless because its numeric value is already divided by 100.
func dimensionless(unit string) bool {
	return unit == "" || unit == "%"
}

// combineUnits propagates units through one combine step. Mismatched
// addition or subtraction yields a composite label rather than an error so
// the operator can spot the misconfiguration in the audit trail.
func combineUnits(op formuladomain.Operator, left, right string) string {
	switch op {
	case formuladomain.OperatorAdd, formuladomain.OperatorSubtract:
		if left == right {
			return left
		}
		if left == "" {
			return right
		}
		if right == "" {
			return left
		}
		return left + string(op) + right
	case formuladomain.OperatorMultiply:
		if dimensionless(left) {
			return right
		}
		if dimensionless(right) {
			return left
		}
		return left + "×" + right
	case formuladomain.OperatorDivide:
		if dimensionless(right) {
			return left
		}
		if left == right {
			return ""
		}
		return left + "/" + right
	default:
		return left
	}
}
