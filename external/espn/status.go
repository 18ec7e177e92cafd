package espn

import "github.com/scorelinehq/scoreline/internal/domain/game"

// statusMappings collapses ESPN's status vocabulary onto the stored
// status enum. Unknown values map to scheduled rather than erroring;
// the feed grows new statuses without notice.
var statusMappings = map[string]game.Status{
	"STATUS_SCHEDULED":   game.StatusScheduled,
	"STATUS_IN_PROGRESS": game.StatusLive,
	"STATUS_HALFTIME":    game.StatusLive,
	"STATUS_FINAL":       game.StatusFinal,
	"STATUS_FULL_TIME":   game.StatusFinal,
	"STATUS_POSTPONED":   game.StatusPostponed,
	"STATUS_CANCELED":    game.StatusCancelled,
	"STATUS_CANCELLED":   game.StatusCancelled,
}

func mapStatus(espnStatus string) game.Status {
	if status, ok := statusMappings[espnStatus]; ok {
		return status
	}
	return game.StatusScheduled
}
