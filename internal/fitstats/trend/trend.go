// Package trend classifies the direction of a metric series and
// predicts its next value. Works on any ordered series, daily
// completion rates or raw logged values alike.
package trend

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

const (
	// minDataPoints is the smallest series worth analyzing,
	// anything shorter yields the stable boundary result
	minDataPoints = 4
	// halfWindow caps each compared half at one week of values
	halfWindow = 7
	// shiftMargin is the percentage change needed before a
	// series counts as moving up or down
	shiftMargin = 10.0
)

type Analysis struct {
	Direction        Direction `json:"direction"`
	ChangePercentage float64   `json:"changePercentage"`
	NextPeriod       float64   `json:"nextPeriod"`
}

// Analyze compares the mean of the most recent values against the
// mean of the values preceding them. The input is ordered oldest
// first. A series shorter than four points returns stable with
// zero change and zero prediction, short history is a defined
// boundary, not an error.
func Analyze(values []float64) Analysis {
	if len(values) < minDataPoints {
		return Analysis{Direction: DirectionStable}
	}

	half := len(values) / 2
	if half > halfWindow {
		half = halfWindow
	}

	recent := values[len(values)-half:]
	older := values[len(values)-2*half : len(values)-half]

	recentMean := mean(recent)
	olderMean := mean(older)

	// a silent older half gives no reference point, the recent mean
	// stands in as the baseline and the change stays at zero
	baseline := olderMean
	if baseline == 0 {
		baseline = recentMean
	}

	var change float64
	if baseline != 0 {
		change = (recentMean - baseline) / baseline * 100
	}

	direction := DirectionStable
	switch {
	case change > shiftMargin:
		direction = DirectionUp
	case change < -shiftMargin:
		direction = DirectionDown
	}

	next := recentMean
	switch direction {
	case DirectionUp:
		next = recentMean * 1.1
	case DirectionDown:
		next = recentMean * 0.9
	}

	return Analysis{
		Direction:        direction,
		ChangePercentage: change,
		NextPeriod:       next,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
