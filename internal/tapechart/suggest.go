package tapechart

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ScoringWeights tunes how alternative rooms are ranked. The relative
// weighting is a policy knob, not a contract; the defaults favour rooms free
// for the whole stay, then rate proximity, then floor preference.
type ScoringWeights struct {
	FullStay        float64
	RateProximity   float64
	FloorPreference float64
	FreeNights      float64
}

// DefaultScoringWeights are used when SuggestOptions carries no weights.
var DefaultScoringWeights = ScoringWeights{
	FullStay:        40,
	RateProximity:   30,
	FloorPreference: 20,
	FreeNights:      10,
}

// SuggestOptions narrows and tunes a suggestion query.
type SuggestOptions struct {
	Limit           int
	PreferredFloor  string
	RequireFullStay bool
	Weights         *ScoringWeights
}

// Suggestion is one ranked alternative room for a reservation.
type Suggestion struct {
	RoomID     string
	RoomNumber string
	Score      float64
	Reasons    []string
}

// Suggest scans the calendar for candidate rooms for the reservation and
// orders them by suitability. Matching room type and at least one free night
// of the stay are hard constraints; everything else contributes to the score.
// The result is deterministic for identical inputs (stable sort, room id as
// the final tiebreak) and empty, never nil with an error, when no room
// qualifies.
func Suggest(cal *Calendar, res Reservation, opts SuggestOptions) []Suggestion {
	weights := DefaultScoringWeights
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	suggestions := make([]Suggestion, 0)
	for _, room := range cal.Rooms() {
		if room.ID == res.RoomID {
			continue
		}
		if !strings.EqualFold(room.Type, res.RoomType) {
			continue
		}
		if room.Status.OutOfService() || room.Status == RoomBlocked {
			continue
		}

		free, total := cal.FreeNights(room.ID, res)
		if total == 0 || free == 0 {
			continue
		}
		if opts.RequireFullStay && free < total {
			continue
		}

		score := 0.0
		reasons := make([]string, 0, 3)
		reasons = append(reasons, fmt.Sprintf("%s room", room.Type))

		if free == total {
			score += weights.FullStay
			reasons = append(reasons, "free for the entire stay")
		} else {
			reasons = append(reasons, fmt.Sprintf("free %d of %d nights", free, total))
		}
		score += weights.FreeNights * float64(free) / float64(total)

		if proximity := rateProximity(room.Rate, res.NightlyRate()); proximity > 0 {
			score += weights.RateProximity * proximity
			if proximity >= 0.9 {
				reasons = append(reasons, "rate close to the booking")
			}
		}

		if opts.PreferredFloor != "" && room.Floor == opts.PreferredFloor {
			score += weights.FloorPreference
			reasons = append(reasons, fmt.Sprintf("on preferred floor %s", room.Floor))
		}

		suggestions = append(suggestions, Suggestion{
			RoomID:     room.ID,
			RoomNumber: room.Number,
			Score:      score,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score == suggestions[j].Score {
			return suggestions[i].RoomID < suggestions[j].RoomID
		}
		return suggestions[i].Score > suggestions[j].Score
	})

	if opts.Limit > 0 && len(suggestions) > opts.Limit {
		suggestions = suggestions[:opts.Limit]
	}
	return suggestions
}

// rateProximity maps two nightly rates onto [0, 1], where 1 means identical.
func rateProximity(roomRate, bookingRate float64) float64 {
	if roomRate <= 0 || bookingRate <= 0 {
		return 0
	}
	max := math.Max(roomRate, bookingRate)
	proximity := 1 - math.Abs(roomRate-bookingRate)/max
	if proximity < 0 {
		return 0
	}
	return proximity
}
