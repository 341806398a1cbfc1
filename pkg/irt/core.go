// Package irt implements the 3-parameter logistic Item Response Theory
// model: the item characteristic curve, item information, and a
// grid-based EAP ability estimator. Every function here is pure and
// side-effect-free; none of them touch the repository or session state.
package irt

import "math"

// Item is the subset of a calibrated question's parameters the IRT core
// needs: discrimination a, difficulty b, and guessing c.
type Item struct {
	A float64
	B float64
	C float64
}

// P3PL returns the probability of a correct response under the 3PL model:
//
//	c + (1-c) / (1 + exp(-D*a*(theta-b)))
//
// a must be > 0 and c must be in [0, 1). The result lies in [c, 1).
func P3PL(theta float64, item Item) float64 {
	exponent := -D * item.A * (theta - item.B)
	return item.C + (1-item.C)/(1+math.Exp(exponent))
}

// ItemInformation returns the Fisher information of item at theta:
//
//	D^2 * a^2 * (p-c)^2 / ((1-c)^2 * p * (1-p))
//
// It returns a NumericError if p clamps to exactly 0 or 1, which should
// not occur for c in (0,1) and finite theta.
func ItemInformation(theta float64, item Item) (float64, error) {
	p := P3PL(theta, item)
	if p <= 0 || p >= 1 {
		return 0, &NumericError{Op: "ItemInformation"}
	}

	oneMinusC := 1 - item.C
	if oneMinusC == 0 {
		return 0, &NumericError{Op: "ItemInformation"}
	}

	numerator := D * D * item.A * item.A * (p - item.C) * (p - item.C)
	denominator := oneMinusC * oneMinusC * p * (1 - p)
	if denominator == 0 {
		return 0, &NumericError{Op: "ItemInformation"}
	}

	return numerator / denominator, nil
}
