package board

import (
	"slices"
	"strings"

	"github.com/mobil-koeln/moko-board/internal/models"
)

// MaxPerGroup caps the departures shown per transport type
const MaxPerGroup = 6

// Aggregate sorts departures by planned time and groups them by type
// label. Sorting is stable, so rows sharing a minute keep input order.
// Each group admits rows in sorted order until it holds MaxPerGroup.
func Aggregate(all []models.FormattedDeparture) models.AggregateResult {
	sorted := slices.Clone(all)
	// TimeLayout is zero-padded, so string order equals chronological order
	slices.SortStableFunc(sorted, func(a, b models.FormattedDeparture) int {
		return strings.Compare(a.PlannedTime, b.PlannedTime)
	})

	result := models.NewAggregateResult()
	for _, dep := range sorted {
		group, exists := result.Groups[dep.TypeLabel]
		if !exists {
			result.Order = append(result.Order, dep.TypeLabel)
		}
		if len(group) < MaxPerGroup {
			result.Groups[dep.TypeLabel] = append(group, dep)
		}
	}

	return result
}
