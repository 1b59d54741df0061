package importer

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/racedaylabs/raceday/models"
	"github.com/racedaylabs/raceday/provider"
)

// processRaces walks the day's card in fixed-size batches. A race failure
// is counted and logged, never fatal; progress is written after every batch
// from the monotonically growing processed counter.
func (imp *Importer) processRaces(ctx context.Context, job *models.ImportJob, cards []provider.Racecard, stats *Stats) {
	stats.TotalRaces = len(cards)

	if len(cards) == 0 {
		if err := imp.jobs.Complete(ctx, job, stats); err != nil {
			imp.log.Error("mark job completed", zap.String("job", job.ID), zap.Error(err))
		}
		return
	}

	processed := 0
	for start := 0; start < len(cards); start += imp.cfg.RaceBatchSize {
		end := start + imp.cfg.RaceBatchSize
		if end > len(cards) {
			end = len(cards)
		}

		for _, card := range cards[start:end] {
			if err := imp.upsertRace(ctx, card); err != nil {
				stats.FailedRaces++
				imp.log.Error("race upsert failed",
					zap.String("job", job.ID), zap.String("race", card.RaceID.String()), zap.Error(err))
			} else {
				stats.SuccessfulRaces++
				imp.processRunners(ctx, job, card, stats)
			}
			processed++
		}

		percent := int(math.Round(float64(processed) / float64(len(cards)) * 100))
		imp.jobs.UpdateProgress(ctx, job, percent, stats)

		if end < len(cards) {
			imp.sleep(ctx, imp.cfg.BatchDelay)
		}
	}

	if err := imp.jobs.Complete(ctx, job, stats); err != nil {
		imp.log.Error("mark job completed", zap.String("job", job.ID), zap.Error(err))
	}
}

// upsertRace reconciles one race against the provider race_id natural key,
// so re-importing a date is idempotent at the race level.
func (imp *Importer) upsertRace(ctx context.Context, card provider.Racecard) error {
	race := &models.Race{
		RaceID:      card.RaceID.String(),
		Date:        card.Date.String(),
		OffTime:     card.OffTime.String(),
		Course:      card.Course.String(),
		CourseID:    card.CourseID.String(),
		RaceName:    card.RaceName.String(),
		Distance:    card.Distance.String(),
		DistanceF:   card.DistanceF.Float(),
		Region:      card.Region.String(),
		RaceClass:   card.RaceClass.String(),
		AgeBand:     card.AgeBand.String(),
		RatingBand:  card.RatingBand.String(),
		Going:       card.Going.String(),
		Surface:     card.Surface.String(),
		Prize:       card.Prize.String(),
		FieldSize:   card.FieldSize.Int(),
		BigRace:     card.BigRace,
		IsAbandoned: card.IsAbandoned,
	}

	_, err := imp.db.NewInsert().Model(race).
		On("CONFLICT (race_id) DO UPDATE").
		Set("off_time = EXCLUDED.off_time").
		Set("race_name = EXCLUDED.race_name").
		Set("distance = EXCLUDED.distance").
		Set("distance_f = EXCLUDED.distance_f").
		Set("race_class = EXCLUDED.race_class").
		Set("age_band = EXCLUDED.age_band").
		Set("rating_band = EXCLUDED.rating_band").
		Set("going = EXCLUDED.going").
		Set("surface = EXCLUDED.surface").
		Set("prize = EXCLUDED.prize").
		Set("field_size = EXCLUDED.field_size").
		Set("big_race = EXCLUDED.big_race").
		Set("is_abandoned = EXCLUDED.is_abandoned").
		Exec(ctx)
	return err
}
