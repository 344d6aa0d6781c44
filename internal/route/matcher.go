package route

import (
	"github.com/eruvierda/safe-commute/internal/report"
	"github.com/eruvierda/safe-commute/internal/shared/geo"
)

// MatchHazards returns every report lying within bufferKm of any point of the
// path. Points are [lng, lat] pairs. Resolved reports are skipped; low trust
// scores are not, since a hazard on the chosen route is worth flagging even
// when the report would no longer raise a proximity warning. Each report
// appears at most once no matter how many path points it is near.
func MatchHazards(points [][2]float64, reports []report.Report, bufferKm float64) []report.Report {
	hazards := []report.Report{}
	if len(points) == 0 || bufferKm <= 0 {
		return hazards
	}

	matched := map[string]struct{}{}
	for _, r := range reports {
		if r.IsResolved {
			continue
		}
		if _, dup := matched[r.ID]; dup {
			continue
		}
		for _, p := range points {
			if geo.HaversineKm(p[1], p[0], r.Lat, r.Lng) <= bufferKm {
				matched[r.ID] = struct{}{}
				hazards = append(hazards, r)
				break
			}
		}
	}
	return hazards
}
