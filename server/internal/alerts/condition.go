package alerts

import (
	"strconv"
	"strings"
)

// evalCondition evaluates a rule condition string against an Observation.
//
// Supported expressions (field operator value):
//
//	failure_probability >= 0.9
//	prediction > 0.8
//	confidence < 0.75
//	alert == true
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is
// unknown.
func evalCondition(cond string, obs Observation) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "alert" {
		if op != "==" {
			return false, 0
		}
		want := rhs == "true"
		return obs.Alert == want, obs.Probability
	}

	var v float64
	switch field {
	case "failure_probability", "prediction":
		v = obs.Probability
	case "confidence":
		v = obs.Confidence
	default:
		return false, 0
	}

	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
