package models

import "github.com/uptrace/bun"

// Race is one race on a day's card. The provider race_id is the natural key;
// re-importing a date upserts against it.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	RaceID      string  `bun:"race_id,notnull,unique" json:"raceID"`
	Date        string  `bun:"date,notnull,type:date" json:"date"`
	OffTime     string  `bun:"off_time,notnull" json:"offTime"`
	Course      string  `bun:"course,notnull" json:"course"`
	CourseID    string  `bun:"course_id,notnull" json:"courseID"`
	RaceName    string  `bun:"race_name,notnull" json:"raceName"`
	Distance    string  `bun:"distance,notnull" json:"distance"`
	DistanceF   float64 `bun:"distance_f,notnull,default:0" json:"distanceF"`
	Region      string  `bun:"region,notnull" json:"region"`
	RaceClass   string  `bun:"race_class,notnull" json:"raceClass"`
	AgeBand     string  `bun:"age_band,notnull" json:"ageBand"`
	RatingBand  string  `bun:"rating_band,notnull" json:"ratingBand"`
	Going       string  `bun:"going,notnull" json:"going"`
	Surface     string  `bun:"surface,notnull" json:"surface"`
	Prize       string  `bun:"prize,notnull" json:"prize"`
	FieldSize   int     `bun:"field_size,notnull,default:0" json:"fieldSize"`
	BigRace     bool    `bun:"big_race,notnull,default:false" json:"bigRace"`
	IsAbandoned bool    `bun:"is_abandoned,notnull,default:false" json:"isAbandoned"`
}
