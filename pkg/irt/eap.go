package irt

import "math"

// Response is one scored answer to a calibrated item, as seen by the EAP
// estimator: just enough to evaluate the 3PL likelihood.
type Response struct {
	Item      Item
	IsCorrect bool
}

// Estimate is the result of a grid-based EAP ability estimation: the
// posterior mean, its standard deviation, and a conservative 95% credible
// interval read off the grid's cumulative posterior.
type Estimate struct {
	Theta    float64
	Sd       float64
	CI95Low  float64
	CI95High float64
}

// EapEstimate computes the posterior mean ability over a 161-point grid
// on [-4, 4], given a Gaussian prior N(priorMean, priorSd^2) and the
// observed response history. An empty response history returns the prior
// unchanged (Theta == priorMean, Sd == priorSd, within grid resolution).
//
// There is no renormalisation per response: the likelihood is accumulated
// unnormalised across the full history and the posterior is normalised
// once, after the sweep, matching the spec's numerical policy.
func EapEstimate(responses []Response, priorMean, priorSd float64) Estimate {
	grid := Grid()
	posterior := make([]float64, len(grid))

	for i, t := range grid {
		z := (t - priorMean) / priorSd
		prior := math.Exp(-0.5 * z * z)

		likelihood := 1.0
		for _, r := range responses {
			p := P3PL(t, r.Item)
			if r.IsCorrect {
				likelihood *= p
			} else {
				likelihood *= 1 - p
			}
		}

		posterior[i] = prior * likelihood
	}

	normalise(posterior)

	theta := posteriorMean(grid, posterior)
	sd := posteriorSd(grid, posterior, theta)
	ciLow, ciHigh := credibleInterval(grid, posterior)

	return Estimate{
		Theta:    theta,
		Sd:       sd,
		CI95Low:  ciLow,
		CI95High: ciHigh,
	}
}

func normalise(posterior []float64) {
	var sum float64
	for _, v := range posterior {
		sum += v
	}
	if sum == 0 {
		// Degenerate: every grid point had zero unnormalised posterior
		// mass (can happen only with pathological inputs). Fall back to
		// a uniform posterior rather than dividing by zero.
		uniform := 1.0 / float64(len(posterior))
		for i := range posterior {
			posterior[i] = uniform
		}
		return
	}
	for i := range posterior {
		posterior[i] /= sum
	}
}

func posteriorMean(grid, posterior []float64) float64 {
	var mean float64
	for i, t := range grid {
		mean += t * posterior[i]
	}
	return mean
}

func posteriorSd(grid, posterior []float64, mean float64) float64 {
	var variance float64
	for i, t := range grid {
		d := t - mean
		variance += d * d * posterior[i]
	}
	return math.Sqrt(variance)
}

// credibleInterval scans the cumulative posterior from the low end and
// returns the smallest grid points at which the cumulative mass first
// reaches 2.5% and 97.5% respectively — conservative, inclusive bounds.
func credibleInterval(grid, posterior []float64) (low, high float64) {
	var cumulative float64
	low, high = grid[0], grid[len(grid)-1]
	lowSet, highSet := false, false

	for i, t := range grid {
		cumulative += posterior[i]
		if !lowSet && cumulative >= 0.025 {
			low = t
			lowSet = true
		}
		if !highSet && cumulative >= 0.975 {
			high = t
			highSet = true
			break
		}
	}

	return low, high
}
