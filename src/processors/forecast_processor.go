package processors

import (
	"github.com/username/comptafacile/backend/src/models"
	"github.com/username/comptafacile/backend/src/utils"
)

// Defaults for the forecaster. MinActiveMonths is the cutoff below which the
// historical sample is too thin to extrapolate a burn rate from; it is
// configurable via FORECAST_MIN_ACTIVE_MONTHS.
const (
	DefaultMinActiveMonths       = 3
	DefaultForecastHorizonMonths = 6
)

type forecastProcessorImpl struct {
	minActiveMonths int
	horizonMonths   int
}

func NewForecastProcessor(minActiveMonths, horizonMonths int) ForecastProcessor {
	if minActiveMonths <= 0 {
		minActiveMonths = DefaultMinActiveMonths
	}
	if horizonMonths <= 0 {
		horizonMonths = DefaultForecastHorizonMonths
	}
	return &forecastProcessorImpl{
		minActiveMonths: minActiveMonths,
		horizonMonths:   horizonMonths,
	}
}

// Forecast projects the account balance horizonMonths ahead from the
// historical spending velocity.
//
// The burn rate is the average net outflow of the active historical months,
// with the sign flipped so that a positive burn rate means the balance is
// shrinking. The real portion of the curve is the running balance
// reconstructed backwards from currentBalance; the projected portion starts
// the month after the last real point and decrements by the burn rate, so
// the two series connect with no gap.
//
// With no connected balance, or fewer active months than the configured
// minimum, the result is structurally valid but empty. The forecaster never
// fails: a missing bank account must not take the dashboard down with it.
func (p *forecastProcessorImpl) Forecast(currentBalance float64, hasBalance bool, history []MonthlyNet) models.CashFlowForecast {
	forecast := models.CashFlowForecast{
		ForecastData: []models.ForecastDataPoint{},
	}
	if !hasBalance {
		return forecast
	}
	forecast.CurrentBalance = utils.RoundFloat(currentBalance, 2)

	activeMonths := 0
	var activeNetSum, totalNetSum float64
	for _, m := range history {
		totalNetSum += m.Net
		if m.Active {
			activeMonths++
			activeNetSum += m.Net
		}
	}
	if activeMonths < p.minActiveMonths {
		return forecast
	}
	forecast.HasEnoughData = true

	// Average over active months only: a freshly-connected account with ten
	// empty months and two busy ones should not look ten times calmer than
	// it is.
	burnRate := -activeNetSum / float64(activeMonths)
	forecast.BurnRate = utils.RoundFloat(burnRate, 2)

	points := make([]models.ForecastDataPoint, 0, len(history)+p.horizonMonths)

	balance := currentBalance - totalNetSum
	for _, m := range history {
		balance += m.Net
		points = append(points, models.ForecastDataPoint{
			Date:  m.Month.Format("2006-01"),
			Solde: utils.RoundFloat(balance, 2),
			Type:  models.ForecastPointReal,
		})
	}

	var lastMonth = history[len(history)-1].Month
	for k := 1; k <= p.horizonMonths; k++ {
		points = append(points, models.ForecastDataPoint{
			Date:  lastMonth.AddDate(0, k, 0).Format("2006-01"),
			Solde: utils.RoundFloat(currentBalance-float64(k)*burnRate, 2),
			Type:  models.ForecastPointProjected,
		})
	}

	forecast.ForecastData = points
	return forecast
}
