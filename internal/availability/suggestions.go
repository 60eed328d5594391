package availability

import (
	"sort"
	"strings"
)

const maxSuggestions = 5

// Confidence levels assigned to derived suggestions. Free-slot suggestions
// carry the slot's own confidence instead.
const (
	conflictConfidence  = 0.9
	reductionConfidence = 0.75
)

// SuggestionGenerator derives ranked, deduplicated suggestions from a
// computed schedule. It is stateless.
type SuggestionGenerator struct{}

// NewSuggestionGenerator returns a stateless generator.
func NewSuggestionGenerator() *SuggestionGenerator {
	return &SuggestionGenerator{}
}

// Generate produces at most maxSuggestions suggestions ranked by action
// urgency, confidence, and then the most recent suggested time. Suggestions
// sharing the same type and affected members are deduplicated, keeping the
// first after ranking.
func (g *SuggestionGenerator) Generate(freeSlots []CommonFreeSlot, conflicts []ConflictingSlot) []SmartSuggestion {
	suggestions := make([]SmartSuggestion, 0, len(conflicts)+2)

	if optimal, ok := g.optimalMeetingTime(freeSlots); ok {
		suggestions = append(suggestions, optimal)
	}
	suggestions = append(suggestions, g.scheduleConflicts(conflicts)...)
	suggestions = append(suggestions, g.conflictReductions(freeSlots, conflicts)...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.ActionRequired != b.ActionRequired {
			return a.ActionRequired
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return suggestedMinute(a) > suggestedMinute(b)
	})

	deduped := make([]SmartSuggestion, 0, len(suggestions))
	seen := make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		key := dedupeKey(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, s)
		if len(deduped) == maxSuggestions {
			break
		}
	}
	return deduped
}

// optimalMeetingTime picks the free slot with the highest confidence, using
// duration as the tiebreak.
func (g *SuggestionGenerator) optimalMeetingTime(freeSlots []CommonFreeSlot) (SmartSuggestion, bool) {
	if len(freeSlots) == 0 {
		return SmartSuggestion{}, false
	}

	best := freeSlots[0]
	for _, slot := range freeSlots[1:] {
		if slot.Confidence > best.Confidence ||
			(slot.Confidence == best.Confidence && slot.DurationMinutes > best.DurationMinutes) {
			best = slot
		}
	}

	start := best.Start
	return SmartSuggestion{
		Type:            SuggestionOptimalMeetingTime,
		Confidence:      best.Confidence,
		SuggestedTime:   &start,
		AffectedMembers: append([]string(nil), best.AvailableMembers...),
		ActionRequired:  false,
	}, true
}

// scheduleConflicts emits one suggestion per conflict involving two or more
// members.
func (g *SuggestionGenerator) scheduleConflicts(conflicts []ConflictingSlot) []SmartSuggestion {
	var out []SmartSuggestion
	for _, conflict := range conflicts {
		if len(conflict.Conflicts) < 2 {
			continue
		}
		start := conflict.Start
		out = append(out, SmartSuggestion{
			Type:            SuggestionScheduleConflict,
			Confidence:      conflictConfidence,
			SuggestedTime:   &start,
			AffectedMembers: conflictMemberIDs(conflict),
			ActionRequired:  true,
		})
	}
	return out
}

// conflictReductions proposes moving a reschedulable conflict into an
// existing free slot of equal or greater duration.
func (g *SuggestionGenerator) conflictReductions(freeSlots []CommonFreeSlot, conflicts []ConflictingSlot) []SmartSuggestion {
	var out []SmartSuggestion
	for _, conflict := range conflicts {
		if !anyReschedulable(conflict) {
			continue
		}
		duration := conflict.End.MinuteOfDay() - conflict.Start.MinuteOfDay()
		target, ok := firstFittingSlot(freeSlots, duration)
		if !ok {
			continue
		}
		start := target.Start
		out = append(out, SmartSuggestion{
			Type:            SuggestionConflictReduction,
			Confidence:      reductionConfidence,
			SuggestedTime:   &start,
			AffectedMembers: conflictMemberIDs(conflict),
			ActionRequired:  true,
		})
	}
	return out
}

func anyReschedulable(conflict ConflictingSlot) bool {
	for _, mc := range conflict.Conflicts {
		if mc.CanBeRescheduled {
			return true
		}
	}
	return false
}

func firstFittingSlot(freeSlots []CommonFreeSlot, duration int) (CommonFreeSlot, bool) {
	for _, slot := range freeSlots {
		if slot.DurationMinutes >= duration {
			return slot, true
		}
	}
	return CommonFreeSlot{}, false
}

func conflictMemberIDs(conflict ConflictingSlot) []string {
	ids := make([]string, 0, len(conflict.Conflicts))
	for _, mc := range conflict.Conflicts {
		ids = append(ids, mc.MemberID)
	}
	sort.Strings(ids)
	return ids
}

func suggestedMinute(s SmartSuggestion) int {
	if s.SuggestedTime == nil {
		return -1
	}
	return s.SuggestedTime.MinuteOfDay()
}

func dedupeKey(s SmartSuggestion) string {
	return string(s.Type) + "|" + strings.Join(s.AffectedMembers, ",")
}
