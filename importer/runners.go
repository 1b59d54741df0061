package importer

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/racedaylabs/raceday/models"
	"github.com/racedaylabs/raceday/provider"
)

// processRunners walks a race's entrants in payload order, in small
// sub-batches with a delay between runners to stay under the provider's
// rate limit. Runner failures are logged and isolated; the race has already
// been committed.
func (imp *Importer) processRunners(ctx context.Context, job *models.ImportJob, card provider.Racecard, stats *Stats) {
	raceID := card.RaceID.String()

	for start := 0; start < len(card.Runners); start += imp.cfg.RunnerBatchSize {
		end := start + imp.cfg.RunnerBatchSize
		if end > len(card.Runners) {
			end = len(card.Runners)
		}

		for _, r := range card.Runners[start:end] {
			if err := imp.processRunner(ctx, raceID, r, stats); err != nil {
				imp.log.Error("runner upsert failed",
					zap.String("job", job.ID),
					zap.String("race", raceID),
					zap.String("horse", r.HorseID.String()),
					zap.Error(err))
			}
			imp.sleep(ctx, imp.cfg.RunnerDelay)
		}
	}
}

// processRunner upserts one entrant on (race_id, horse_id) and then runs
// the two horse-level processors. The processors are wrapped independently:
// a failure in one is counted in its own category and does not stop the
// other, nor does it undo the committed runner row.
func (imp *Importer) processRunner(ctx context.Context, raceID string, r provider.CardRunner, stats *Stats) error {
	odds := r.Odds
	if odds == nil {
		odds = []provider.Odd{}
	}
	oddsJSON, err := json.Marshal(odds)
	if err != nil {
		return err
	}

	var headgear *string
	if hg := r.Headgear.String(); hg != "" {
		headgear = &hg
	}

	runner := &models.Runner{
		RaceID:         raceID,
		HorseID:        r.HorseID.String(),
		Horse:          r.Horse.String(),
		Age:            r.Age.Int(),
		Sex:            r.Sex.String(),
		Sire:           r.Sire.String(),
		Dam:            r.Dam.String(),
		Damsire:        r.Damsire.String(),
		Jockey:         r.Jockey.String(),
		Trainer:        r.Trainer.String(),
		Number:         r.Number.Int(),
		Draw:           r.Draw.Int(),
		Lbs:            r.Lbs.Int(),
		OfficialRating: r.Ofr.Int(),
		Headgear:       headgear,
		Form:           r.Form.String(),
		Comment:        r.Comment.String(),
		IsNonRunner:    r.IsNonRunner,
		Odds:           oddsJSON,
	}

	_, err = imp.db.NewInsert().Model(runner).
		On("CONFLICT (race_id, horse_id) DO UPDATE").
		Set("jockey = EXCLUDED.jockey").
		Set("number = EXCLUDED.number").
		Set("draw = EXCLUDED.draw").
		Set("lbs = EXCLUDED.lbs").
		Set("official_rating = EXCLUDED.official_rating").
		Set("headgear = EXCLUDED.headgear").
		Set("form = EXCLUDED.form").
		Set("comment = EXCLUDED.comment").
		Set("is_non_runner = EXCLUDED.is_non_runner").
		Set("odds = EXCLUDED.odds").
		Exec(ctx)
	if err != nil {
		return err
	}

	horseID := r.HorseID.String()

	if err := imp.processHorseResults(ctx, horseID, stats); err != nil {
		imp.log.Error("horse results import failed",
			zap.String("horse", horseID), zap.Error(err))
	}
	imp.sleep(ctx, imp.cfg.HorseCallDelay)

	if err := imp.processDistanceAnalysis(ctx, horseID, stats); err != nil {
		imp.log.Error("distance analysis import failed",
			zap.String("horse", horseID), zap.Error(err))
	}
	imp.sleep(ctx, imp.cfg.HorseCallDelay)

	return nil
}
