package roast

import "errors"

// Domain errors for roaster parameter validation.
var (
	// ErrBatchSize indicates a non-positive charge weight.
	ErrBatchSize = errors.New("roast: batch grams must be positive")

	// ErrMoistureRange indicates a moisture fraction outside [0, 1).
	ErrMoistureRange = errors.New("roast: moisture must be in [0, 1)")

	// ErrDropTime indicates a non-positive roast duration.
	ErrDropTime = errors.New("roast: drop time must be positive")

	// ErrInitialPower indicates a non-positive initial power setting.
	ErrInitialPower = errors.New("roast: initial power must be positive")

	// ErrBurnerRating indicates a non-positive burner rating.
	ErrBurnerRating = errors.New("roast: burner MJ must be positive")

	// ErrResponse indicates a response factor that collapses the probe lag.
	ErrResponse = errors.New("roast: response factor out of valid range")
)
