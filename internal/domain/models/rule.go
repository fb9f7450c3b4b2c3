package models

// RuleParameters holds the four coefficients of the inertial policy rule.
type RuleParameters struct {
	Rho   float64 `json:"rho"`   // persistence, [0, 0.99]
	RStar float64 `json:"rstar"` // neutral real rate, [-2, 5]
	Alpha float64 `json:"alpha"` // inflation-gap weight, [0, 3]
	Beta  float64 `json:"beta"`  // output-gap weight, [0, 3]
}

// DateWindow is the inclusive period range selected for display and
// statistics. Bounds are "YYYY-MM" labels.
type DateWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FitStatistics measures agreement between the actual and implied rate
// over the current window. Fields are nil when fewer than two paired
// non-null observations exist; Correlation is additionally nil when
// either series has zero variance.
type FitStatistics struct {
	RMSE          *float64 `json:"rmse"`
	MAE           *float64 `json:"mae"`
	Correlation   *float64 `json:"correlation"`
	MeanDeviation *float64 `json:"mean_deviation"`
}
