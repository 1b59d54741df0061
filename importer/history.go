package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/racedaylabs/raceday/models"
	"github.com/racedaylabs/raceday/provider"
)

// processHorseResults fully replaces a horse's historical results: every
// existing row for the horse is deleted and the provider's current list
// reinserted in one transaction. Attempted is bumped on entry; the caller's
// wrapper records the returned error per category.
func (imp *Importer) processHorseResults(ctx context.Context, horseID string, stats *Stats) error {
	stats.HorseResults.Attempted++

	races, err := imp.src.HorseResults(ctx, horseID)
	if err != nil {
		stats.HorseResults.Failed++
		return fmt.Errorf("fetch horse results: %w", err)
	}

	if len(races) > 0 {
		if err := imp.replaceHorseResults(ctx, horseID, races); err != nil {
			stats.HorseResults.Failed++
			return err
		}
	}

	stats.HorseResults.Successful++
	return nil
}

func (imp *Importer) replaceHorseResults(ctx context.Context, horseID string, races []provider.ResultRace) error {
	tx, err := imp.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.NewDelete().Model((*models.HorseResult)(nil)).
		Where("horse_id = ?", horseID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete horse results: %w", err)
	}

	for _, race := range races {
		row, ok := buildHorseResult(horseID, race)
		if !ok {
			// The horse has no line in this race's runner list; skip the
			// race, the rest of the history still goes in.
			imp.log.Warn("horse missing from own result",
				zap.String("horse", horseID), zap.String("race", race.RaceID.String()))
			continue
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert horse result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// buildHorseResult combines the horse's own line in a historical race with
// the first three finishers derived from the full runner list. Returns
// false when the horse has no entry in the race.
func buildHorseResult(horseID string, race provider.ResultRace) (*models.HorseResult, bool) {
	var own *provider.ResultRunner
	for i := range race.Runners {
		if race.Runners[i].HorseID.String() == horseID {
			own = &race.Runners[i]
			break
		}
	}
	if own == nil {
		return nil, false
	}

	row := &models.HorseResult{
		HorseID:  horseID,
		RaceID:   race.RaceID.String(),
		Date:     race.Date.String(),
		Course:   race.Course.String(),
		CourseID: race.CourseID.String(),
		Off:      race.Off.String(),
		Distance: race.Distance.String(),
		Going:    race.Going.String(),
		Class:    race.Class.String(),

		Position:       own.Position.String(),
		Weight:         own.Weight.IntPtr(),
		SP:             own.SP.String(),
		Jockey:         own.Jockey.String(),
		Trainer:        own.Trainer.String(),
		OfficialRating: own.OR.IntPtr(),
		RPR:            own.RPR.IntPtr(),
		Comment:        own.Comment.String(),
		BeatenDistance: own.Btn.String(),
	}

	for i := range race.Runners {
		r := &race.Runners[i]
		switch r.Position.String() {
		case "1":
			row.Winner = r.Horse.String()
			row.WinnerWeight = r.Weight.IntPtr()
			row.WinnerBtn = r.Btn.String()
		case "2":
			row.Second = r.Horse.String()
			row.SecondWeight = r.Weight.IntPtr()
			row.SecondBtn = r.Btn.String()
		case "3":
			row.Third = r.Horse.String()
			row.ThirdWeight = r.Weight.IntPtr()
			row.ThirdBtn = r.Btn.String()
		}
	}

	return row, true
}
