package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// racecardRow is a flat scan target for the races/runners join.
type racecardRow struct {
	// races table (alias rc)
	RaceID     string  `bun:"race_id"`
	Date       string  `bun:"date"`
	OffTime    string  `bun:"off_time"`
	Course     string  `bun:"course"`
	CourseID   string  `bun:"course_id"`
	RaceName   string  `bun:"race_name"`
	Distance   string  `bun:"distance"`
	DistanceF  float64 `bun:"distance_f"`
	RaceClass  string  `bun:"race_class"`
	AgeBand    string  `bun:"age_band"`
	RatingBand string  `bun:"rating_band"`
	Going      string  `bun:"going"`
	Surface    string  `bun:"surface"`
	Prize      string  `bun:"prize"`
	// runners table (alias rn)
	HorseID     string          `bun:"horse_id"`
	Horse       string          `bun:"horse"`
	Number      int             `bun:"number"`
	Draw        int             `bun:"draw"`
	Lbs         int             `bun:"lbs"`
	Jockey      string          `bun:"jockey"`
	Trainer     string          `bun:"trainer"`
	Form        string          `bun:"form"`
	Headgear    *string         `bun:"headgear"`
	IsNonRunner bool            `bun:"is_non_runner"`
	Odds        json.RawMessage `bun:"odds"`
}

type racecardRunner struct {
	HorseID     string          `json:"horseID"`
	Horse       string          `json:"horse"`
	Number      int             `json:"number"`
	Draw        int             `json:"draw"`
	Lbs         int             `json:"lbs"`
	Jockey      string          `json:"jockey"`
	Trainer     string          `json:"trainer"`
	Form        string          `json:"form,omitempty"`
	Headgear    *string         `json:"headgear,omitempty"`
	IsNonRunner bool            `json:"isNonRunner"`
	Odds        json.RawMessage `json:"odds"`
}

type racecardRace struct {
	RaceID     string           `json:"raceID"`
	Date       string           `json:"date"`
	OffTime    string           `json:"offTime"`
	Course     string           `json:"course"`
	CourseID   string           `json:"courseID"`
	RaceName   string           `json:"raceName"`
	Distance   string           `json:"distance"`
	DistanceF  float64          `json:"distanceF"`
	RaceClass  string           `json:"raceClass,omitempty"`
	AgeBand    string           `json:"ageBand,omitempty"`
	RatingBand string           `json:"ratingBand,omitempty"`
	Going      string           `json:"going,omitempty"`
	Surface    string           `json:"surface,omitempty"`
	Prize      string           `json:"prize,omitempty"`
	Runners    []racecardRunner `json:"runners"`
}

const racecardsJoinSQL = `
SELECT
	rc.race_id, rc.date::text AS date, rc.off_time, rc.course, rc.course_id,
	rc.race_name, rc.distance, rc.distance_f, rc.race_class, rc.age_band,
	rc.rating_band, rc.going, rc.surface, rc.prize,
	rn.horse_id, rn.horse, rn.number, rn.draw, rn.lbs, rn.jockey, rn.trainer,
	rn.form, rn.headgear, rn.is_non_runner, rn.odds
FROM races rc
INNER JOIN runners rn ON rn.race_id = rc.race_id
`

// Racecards returns all imported races for a date, grouped with their runners.
func (h *Handler) Racecards(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing date param")
	}

	var rows []racecardRow
	q := racecardsJoinSQL + `WHERE rc.date = ? ORDER BY rc.off_time, rc.race_id, rn.number`

	if err := h.db.NewRaw(q, date).Scan(c.Request().Context(), &rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, groupRunnersByRace(rows))
}

// groupRunnersByRace converts flat rows into race-grouped slices, keeping
// the query's ordering.
func groupRunnersByRace(rows []racecardRow) []racecardRace {
	order := []string{}
	races := map[string]*racecardRace{}

	for _, row := range rows {
		runner := racecardRunner{
			HorseID:     row.HorseID,
			Horse:       row.Horse,
			Number:      row.Number,
			Draw:        row.Draw,
			Lbs:         row.Lbs,
			Jockey:      row.Jockey,
			Trainer:     row.Trainer,
			Form:        row.Form,
			Headgear:    row.Headgear,
			IsNonRunner: row.IsNonRunner,
			Odds:        row.Odds,
		}

		if _, ok := races[row.RaceID]; !ok {
			order = append(order, row.RaceID)
			races[row.RaceID] = &racecardRace{
				RaceID:     row.RaceID,
				Date:       row.Date,
				OffTime:    row.OffTime,
				Course:     row.Course,
				CourseID:   row.CourseID,
				RaceName:   row.RaceName,
				Distance:   row.Distance,
				DistanceF:  row.DistanceF,
				RaceClass:  row.RaceClass,
				AgeBand:    row.AgeBand,
				RatingBand: row.RatingBand,
				Going:      row.Going,
				Surface:    row.Surface,
				Prize:      row.Prize,
				Runners:    []racecardRunner{},
			}
		}
		races[row.RaceID].Runners = append(races[row.RaceID].Runners, runner)
	}

	out := make([]racecardRace, 0, len(order))
	for _, k := range order {
		out = append(out, *races[k])
	}
	return out
}
