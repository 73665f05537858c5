// Package sm2 implements the SuperMemo-2 scheduling math used to space word pair reviews.
package sm2

import "math"

// Quality is the self-reported recall quality of a single review (0-5)
type Quality int

const (
	// QualityBlackout means the answer was not recalled at all
	QualityBlackout Quality = 0
	// QualityIncorrect means the answer was wrong but recognized once shown
	QualityIncorrect Quality = 1
	// QualityIncorrectFamiliar means the answer was wrong but felt familiar
	QualityIncorrectFamiliar Quality = 2
	// QualityCorrectDifficult means the answer was recalled with serious difficulty
	QualityCorrectDifficult Quality = 3
	// QualityCorrectHesitation means the answer was recalled after a hesitation
	QualityCorrectHesitation Quality = 4
	// QualityPerfect means the answer was recalled immediately
	QualityPerfect Quality = 5
)

const (
	// MinEaseFactor is the lowest ease factor a card can reach
	MinEaseFactor = 1.3
	// MaxEaseFactor is the domain ceiling for stored ease factors
	MaxEaseFactor = 5.0
	// InitialEaseFactor is assigned to every newly created card
	InitialEaseFactor = 2.5
	// MaxIntervalDays caps every computed interval
	MaxIntervalDays = 365
	// PassThreshold is the lowest quality counted as a correct answer
	PassThreshold = 3
)

// Result holds the scheduling state produced by Next
type Result struct {
	EaseFactor      float64
	IntervalDays    int
	RepetitionCount int
}

// IsCorrect reports whether the quality counts as a correct answer
func IsCorrect(quality int) bool {
	return quality >= PassThreshold
}

// Next computes the next ease factor, interval and repetition count for a card.
//
// "quality" is clamped to [0,5] and "easeFactor" is raised to MinEaseFactor before use.
// A lapse (quality < 3) always resets the repetition count to 0 and the interval to 1 day.
// Otherwise the first two successful repetitions are scheduled 1 and 6 days out and later ones
// grow by the ease factor the card had when it was answered.
// The ease factor is not capped from above here, callers enforce MaxEaseFactor.
func Next(quality int, easeFactor float64, intervalDays int, repetitionCount int) Result {
	quality = clampQuality(quality)
	if easeFactor < MinEaseFactor {
		easeFactor = MinEaseFactor
	}

	newEase := updateEaseFactor(easeFactor, quality)

	var newInterval, newRepetitions int
	if quality < PassThreshold {
		newRepetitions = 0
		newInterval = 1
	} else {
		newRepetitions = repetitionCount + 1
		switch newRepetitions {
		case 1:
			newInterval = 1
		case 2:
			newInterval = 6
		default:
			newInterval = int(math.Round(float64(intervalDays) * easeFactor))
			if newInterval < 1 {
				newInterval = 1
			}
		}
	}

	if newInterval > MaxIntervalDays {
		newInterval = MaxIntervalDays
	}

	return Result{
		EaseFactor:      newEase,
		IntervalDays:    newInterval,
		RepetitionCount: newRepetitions,
	}
}

// updateEaseFactor applies EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)) with a floor of MinEaseFactor
func updateEaseFactor(easeFactor float64, quality int) float64 {
	miss := float64(5 - quality)
	newEase := easeFactor + (0.1 - miss*(0.08+miss*0.02))
	if newEase < MinEaseFactor {
		return MinEaseFactor
	}
	return newEase
}

func clampQuality(quality int) int {
	if quality < 0 {
		return 0
	}
	if quality > 5 {
		return 5
	}
	return quality
}

// RetentionProbability estimates how likely a card is still remembered
// "daysSinceReview" days after its last review, using exponential decay.
func RetentionProbability(daysSinceReview int, easeFactor float64, intervalDays int) float64 {
	if intervalDays <= 0 || easeFactor <= 0 {
		return 1.0
	}
	if daysSinceReview < 0 {
		daysSinceReview = 0
	}

	decay := 1 / (easeFactor * float64(intervalDays))
	retention := math.Exp(-decay * float64(daysSinceReview))

	return math.Max(0, math.Min(1, retention))
}

// AdjustForOverdue shortens an interval for a card answered late, by at most 20%
func AdjustForOverdue(baseInterval int, daysOverdue int) int {
	if daysOverdue <= 0 || baseInterval <= 0 {
		return baseInterval
	}

	overdueFactor := math.Min(1.0, float64(daysOverdue)/float64(baseInterval))
	adjusted := int(math.Round(float64(baseInterval) * (1.0 - overdueFactor*0.2)))
	if adjusted < 1 {
		return 1
	}
	return adjusted
}
