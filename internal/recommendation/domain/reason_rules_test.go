package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/stretchr/testify/assert"
)

func TestSelectReason_Order(t *testing.T) {
	rules := domain.DefaultReasonRules()

	tests := []struct {
		name     string
		facts    domain.SlotFacts
		expected domain.ReasonCategory
	}{
		{
			name:     "learned pattern beats everything",
			facts:    domain.SlotFacts{HasLearned: true, LearnedScore: 80, FocusScore: 100, TopPreferred: true, AvailabilityScore: 100},
			expected: domain.ReasonUserPattern,
		},
		{
			name:     "learned below threshold is ignored",
			facts:    domain.SlotFacts{HasLearned: true, LearnedScore: 79, FocusScore: 90},
			expected: domain.ReasonPeakFocus,
		},
		{
			name:     "peak focus beats priority match",
			facts:    domain.SlotFacts{FocusScore: 95, TopPreferred: true},
			expected: domain.ReasonPeakFocus,
		},
		{
			name:     "priority match beats free slot",
			facts:    domain.SlotFacts{FocusScore: 89, TopPreferred: true, AvailabilityScore: 100},
			expected: domain.ReasonPriorityMatch,
		},
		{
			name:     "free slot",
			facts:    domain.SlotFacts{FocusScore: 60, AvailabilityScore: 90},
			expected: domain.ReasonFreeSlot,
		},
		{
			name:     "fallback",
			facts:    domain.SlotFacts{FocusScore: 55, AvailabilityScore: 80},
			expected: domain.ReasonBalancedDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.SelectReason(rules, tt.facts))
		})
	}
}

func TestSelectReason_CustomRules(t *testing.T) {
	rules := []domain.ReasonRule{
		{Reason: domain.ReasonFreeSlot},
		{Reason: domain.ReasonPriorityMatch, Matches: func(domain.SlotFacts) bool { return true }},
	}
	assert.Equal(t, domain.ReasonPriorityMatch, domain.SelectReason(rules, domain.SlotFacts{}))
	assert.Equal(t, domain.ReasonBalancedDay, domain.SelectReason(nil, domain.SlotFacts{}))
}
