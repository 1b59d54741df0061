package models

import "github.com/uptrace/bun"

// HorseDistanceAnalysis is the root of a horse's distance/time performance
// breakdown: one row per horse, replaced wholesale together with its details
// and times on every import.
type HorseDistanceAnalysis struct {
	bun.BaseModel `bun:"table:horse_distance_analysis,alias:hda"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	HorseID   string `bun:"horse_id,notnull,unique" json:"horseID"`
	Horse     string `bun:"horse,notnull" json:"horse"`
	Sire      string `bun:"sire,notnull" json:"sire"`
	SireID    string `bun:"sire_id,notnull" json:"sireID"`
	Dam       string `bun:"dam,notnull" json:"dam"`
	DamID     string `bun:"dam_id,notnull" json:"damID"`
	Damsire   string `bun:"damsire,notnull" json:"damsire"`
	DamsireID string `bun:"damsire_id,notnull" json:"damsireID"`
	TotalRuns int    `bun:"total_runs,notnull,default:0" json:"totalRuns"`
}

// HorseDistanceDetail is one distance bucket under an analysis. Provider
// keys 1st/2nd/3rd/4th/a-e/win_%/1_pl map onto the named columns here.
type HorseDistanceDetail struct {
	bun.BaseModel `bun:"table:horse_distance_details,alias:hdd"`

	ID            int     `bun:"id,pk,autoincrement" json:"id"`
	AnalysisID    int     `bun:"analysis_id,notnull" json:"analysisID"`
	Dist          string  `bun:"dist,notnull" json:"dist"`
	DistY         float64 `bun:"dist_y,notnull,default:0" json:"distY"`
	DistM         float64 `bun:"dist_m,notnull,default:0" json:"distM"`
	DistF         float64 `bun:"dist_f,notnull,default:0" json:"distF"`
	Runs          int     `bun:"runs,notnull,default:0" json:"runs"`
	Wins          int     `bun:"wins,notnull,default:0" json:"wins"`
	SecondPlaces  int     `bun:"second_places,notnull,default:0" json:"secondPlaces"`
	ThirdPlaces   int     `bun:"third_places,notnull,default:0" json:"thirdPlaces"`
	FourthPlaces  int     `bun:"fourth_places,notnull,default:0" json:"fourthPlaces"`
	AEIndex       float64 `bun:"ae_index,notnull,default:0" json:"aeIndex"`
	WinPercentage float64 `bun:"win_percentage,notnull,default:0" json:"winPercentage"`
	PlaceIndex    float64 `bun:"place_index,notnull,default:0" json:"placeIndex"`
}

// HorseDistanceTime is one timed run at a distance, keyed to its detail row.
type HorseDistanceTime struct {
	bun.BaseModel `bun:"table:horse_distance_times,alias:hdt"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	DetailID int    `bun:"detail_id,notnull" json:"detailID"`
	Date     string `bun:"date,notnull" json:"date"`
	Region   string `bun:"region,notnull" json:"region"`
	Course   string `bun:"course,notnull" json:"course"`
	CourseID string `bun:"course_id,notnull" json:"courseID"`
	Time     string `bun:"time,notnull" json:"time"`
	Going    string `bun:"going,notnull" json:"going"`
	Position string `bun:"position,notnull" json:"position"`
}
