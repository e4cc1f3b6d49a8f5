package domain

// Thresholds used by the default reason rules.
const (
	UserPatternThreshold = 80
	PeakFocusThreshold   = 90
	FreeSlotAvailability = 90
)

// SlotFacts are the per-slot values reason rules inspect.
type SlotFacts struct {
	Hour              int
	FocusScore        int
	AvailabilityScore int
	LearnedScore      int
	HasLearned        bool
	TopPreferred      bool
}

// ReasonRule pairs a predicate with the category it assigns.
type ReasonRule struct {
	Reason  ReasonCategory
	Matches func(SlotFacts) bool
}

// DefaultReasonRules returns the rules in evaluation order.
func DefaultReasonRules() []ReasonRule {
	return []ReasonRule{
		{
			Reason: ReasonUserPattern,
			Matches: func(f SlotFacts) bool {
				return f.HasLearned && f.LearnedScore >= UserPatternThreshold
			},
		},
		{
			Reason: ReasonPeakFocus,
			Matches: func(f SlotFacts) bool {
				return f.FocusScore >= PeakFocusThreshold
			},
		},
		{
			Reason: ReasonPriorityMatch,
			Matches: func(f SlotFacts) bool {
				return f.TopPreferred
			},
		},
		{
			Reason: ReasonFreeSlot,
			Matches: func(f SlotFacts) bool {
				return f.AvailabilityScore >= FreeSlotAvailability
			},
		},
	}
}

// SelectReason returns the first matching rule's category, or balanced-day.
func SelectReason(rules []ReasonRule, facts SlotFacts) ReasonCategory {
	for _, rule := range rules {
		if rule.Matches != nil && rule.Matches(facts) {
			return rule.Reason
		}
	}
	return ReasonBalancedDay
}
