package models

import "github.com/uptrace/bun"

// HorseResult is one historical performance line for a horse. The set is
// fully replaced per horse on every import: all rows for the horse_id are
// deleted and the provider's current list reinserted.
//
// Winner/Second/Third and their weight/beaten-distance columns are derived
// at import time from the race's full runner list (positions "1"-"3").
// Weight columns use nullable ints: an unparseable provider weight stays
// NULL rather than collapsing to zero.
type HorseResult struct {
	bun.BaseModel `bun:"table:horse_results,alias:hr"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	HorseID  string `bun:"horse_id,notnull,unique:horse_results_no_dupes" json:"horseID"`
	RaceID   string `bun:"race_id,notnull,unique:horse_results_no_dupes" json:"raceID"`
	Date     string `bun:"date,notnull" json:"date"`
	Course   string `bun:"course,notnull" json:"course"`
	CourseID string `bun:"course_id,notnull" json:"courseID"`
	Off      string `bun:"off,notnull" json:"off"`
	Distance string `bun:"distance,notnull" json:"distance"`
	Going    string `bun:"going,notnull" json:"going"`
	Class    string `bun:"class,notnull" json:"class"`

	Position       string `bun:"position,notnull" json:"position"`
	Weight         *int   `bun:"weight" json:"weight,omitempty"`
	SP             string `bun:"sp,notnull" json:"sp"`
	Jockey         string `bun:"jockey,notnull" json:"jockey"`
	Trainer        string `bun:"trainer,notnull" json:"trainer"`
	OfficialRating *int   `bun:"official_rating" json:"officialRating,omitempty"`
	RPR            *int   `bun:"rpr" json:"rpr,omitempty"`
	Comment        string `bun:"comment,notnull" json:"comment"`
	BeatenDistance string `bun:"beaten_distance,notnull" json:"beatenDistance"`

	Winner       string `bun:"winner,notnull" json:"winner"`
	Second       string `bun:"second,notnull" json:"second"`
	Third        string `bun:"third,notnull" json:"third"`
	WinnerWeight *int   `bun:"winner_weight" json:"winnerWeight,omitempty"`
	SecondWeight *int   `bun:"second_weight" json:"secondWeight,omitempty"`
	ThirdWeight  *int   `bun:"third_weight" json:"thirdWeight,omitempty"`
	WinnerBtn    string `bun:"winner_btn,notnull" json:"winnerBtn"`
	SecondBtn    string `bun:"second_btn,notnull" json:"secondBtn"`
	ThirdBtn     string `bun:"third_btn,notnull" json:"thirdBtn"`
}
