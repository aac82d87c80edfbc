package planning

// Forecast is a moving-average projection with a linear trend component.
type Forecast struct {
	DailyAverage float64
	Trend        float64
	Horizon      []float64
}

// MinHistory is the shortest demand series worth forecasting.
const MinHistory = 4

// ForecastDemand projects daily demand `horizon` days forward from a daily
// history. The level is the mean of the last `window` observations; the
// trend is the per-day drift between the window's older and newer halves.
// Projections clamp at zero, demand cannot go negative. Returns false when
// the history is too short to say anything.
func ForecastDemand(history []float64, window, horizon int) (Forecast, bool) {
	if len(history) < MinHistory || window < 2 || horizon < 1 {
		return Forecast{}, false
	}
	if window > len(history) {
		window = len(history)
	}

	recent := history[len(history)-window:]
	level := mean(recent)

	half := window / 2
	older := mean(recent[:half])
	newer := mean(recent[window-half:])
	trend := (newer - older) / float64(half)

	projection := make([]float64, horizon)
	for day := range projection {
		value := level + trend*float64(day+1)
		if value < 0 {
			value = 0
		}
		projection[day] = value
	}
	return Forecast{DailyAverage: level, Trend: trend, Horizon: projection}, true
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
