package engine

import (
	"github.com/shopspring/decimal"
)

// EstimateDuration returns the minutes estimate for one visit, always a
// positive multiple of 30. Rounding is always UP: an underestimated job
// overruns its slot and cascades into real-world scheduling conflicts,
// while an overestimate just leaves slack.
func EstimateDuration(property PropertyFacts, isFirstClean bool, addons []Addon, s Settings) (int, error) {
	if err := property.Validate(); err != nil {
		return 0, err
	}

	minutes := decimal.NewFromInt(int64(property.SizeUnits() * s.BaseMinutesPer500))

	if extraBaths := property.Bathrooms - s.IncludedBathrooms; extraBaths > 0 {
		minutes = minutes.Add(decimal.NewFromFloat(extraBaths).Mul(decimal.NewFromInt(int64(s.ExtraBathroomMinutes))))
	}
	if extraBeds := property.Bedrooms - s.IncludedBedrooms; extraBeds > 0 {
		minutes = minutes.Add(decimal.NewFromInt(int64(extraBeds * s.ExtraBedroomMinutes)))
	}

	if isFirstClean {
		minutes = minutes.Mul(s.FirstCleanDurationMultiplier)
	}

	for _, a := range dedupeAddons(addons) {
		minutes = minutes.Add(decimal.NewFromInt(int64(a.DurationMinutes)))
	}

	return roundUpToHalfHour(minutes), nil
}

// roundUpToHalfHour rounds up to the next multiple of 30, with a floor of 30.
func roundUpToHalfHour(minutes decimal.Decimal) int {
	blocks := minutes.Div(decimal.NewFromInt(30)).Ceil().IntPart()
	if blocks < 1 {
		blocks = 1
	}
	return int(blocks) * 30
}
