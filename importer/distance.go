package importer

import (
	"context"
	"fmt"

	"github.com/racedaylabs/raceday/models"
	"github.com/racedaylabs/raceday/provider"
)

// processDistanceAnalysis fully replaces a horse's distance/time hierarchy.
// Attempted is bumped on entry; a payload without an identifier means the
// provider has no analysis for the horse and counts as a success with no
// rows written.
func (imp *Importer) processDistanceAnalysis(ctx context.Context, horseID string, stats *Stats) error {
	stats.DistanceAnalysis.Attempted++

	payload, err := imp.src.HorseDistanceTimes(ctx, horseID)
	if err != nil {
		stats.DistanceAnalysis.Failed++
		return fmt.Errorf("fetch distance analysis: %w", err)
	}

	if payload != nil && payload.ID.String() != "" {
		if err := imp.replaceDistanceAnalysis(ctx, horseID, payload); err != nil {
			stats.DistanceAnalysis.Failed++
			return err
		}
	}

	stats.DistanceAnalysis.Successful++
	return nil
}

func (imp *Importer) replaceDistanceAnalysis(ctx context.Context, horseID string, payload *provider.DistanceAnalysis) error {
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

	// Children first so a reimport can never leave orphan detail/time rows.
	if _, err := tx.NewDelete().Model((*models.HorseDistanceTime)(nil)).
		Where(`detail_id IN (
			SELECT hdd.id FROM horse_distance_details hdd
			JOIN horse_distance_analysis hda ON hda.id = hdd.analysis_id
			WHERE hda.horse_id = ?)`, horseID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete distance times: %w", err)
	}
	if _, err := tx.NewDelete().Model((*models.HorseDistanceDetail)(nil)).
		Where(`analysis_id IN (
			SELECT id FROM horse_distance_analysis WHERE horse_id = ?)`, horseID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete distance details: %w", err)
	}
	if _, err := tx.NewDelete().Model((*models.HorseDistanceAnalysis)(nil)).
		Where("horse_id = ?", horseID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete distance analysis: %w", err)
	}

	analysis := &models.HorseDistanceAnalysis{
		HorseID:   horseID,
		Horse:     payload.Horse.String(),
		Sire:      payload.Sire.String(),
		SireID:    payload.SireID.String(),
		Dam:       payload.Dam.String(),
		DamID:     payload.DamID.String(),
		Damsire:   payload.Damsire.String(),
		DamsireID: payload.DamsireID.String(),
		TotalRuns: payload.TotalRuns.Int(),
	}
	if _, err := tx.NewInsert().Model(analysis).Exec(ctx); err != nil {
		return fmt.Errorf("insert distance analysis: %w", err)
	}

	for _, entry := range payload.Distances {
		detail := &models.HorseDistanceDetail{
			AnalysisID:    analysis.ID,
			Dist:          entry.Dist.String(),
			DistY:         entry.DistY.Float(),
			DistM:         entry.DistM.Float(),
			DistF:         entry.DistF.Float(),
			Runs:          entry.Runs.Int(),
			Wins:          entry.Wins.Int(),
			SecondPlaces:  entry.SecondPlaces.Int(),
			ThirdPlaces:   entry.ThirdPlaces.Int(),
			FourthPlaces:  entry.FourthPlaces.Int(),
			AEIndex:       entry.AEIndex.Float(),
			WinPercentage: entry.WinPct.Float(),
			PlaceIndex:    entry.PlaceIndex.Float(),
		}
		if _, err := tx.NewInsert().Model(detail).Exec(ctx); err != nil {
			return fmt.Errorf("insert distance detail: %w", err)
		}

		for _, tm := range entry.Times {
			row := &models.HorseDistanceTime{
				DetailID: detail.ID,
				Date:     tm.Date.String(),
				Region:   tm.Region.String(),
				Course:   tm.Course.String(),
				CourseID: tm.CourseID.String(),
				Time:     tm.Time.String(),
				Going:    tm.Going.String(),
				Position: tm.Position.String(),
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert distance time: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
