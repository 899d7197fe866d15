package bollinger

const (
	// Name is the strategy name
	Name = "band-breakout"
	// ParamCount is the number of tunable parameters: band length, stop loss
	// fraction and confirmation length
	ParamCount = 3
	// ExitAverageLength is the fixed moving average used as a trailing exit
	ExitAverageLength = 9

	minimumBandLength    = 2
	minimumConfirmations = 1
	description          = `Band breakout waits for a run of bars that trade inside the previous bar's Bollinger band before buying. The position is closed when price breaks above the previous upper band, falls through the stop loss or drops to the nine bar moving average`
)

// Strategy is the Bollinger band breakout strategy
type Strategy struct {
	params        []float64
	bandLength    int
	stopLoss      float64
	confirmations int
}

// run holds the state of a single simulation
type run struct {
	*Strategy
	streak int
}
