package models

import (
	"encoding/json"

	"github.com/uptrace/bun"
)

// Runner is one entrant in one race, keyed by (race_id, horse_id). Across
// re-imports of the same card only is_non_runner and odds normally change.
type Runner struct {
	bun.BaseModel `bun:"table:runners,alias:rn"`

	ID             int             `bun:"id,pk,autoincrement" json:"id"`
	RaceID         string          `bun:"race_id,notnull,unique:runners_no_dupes" json:"raceID"`
	HorseID        string          `bun:"horse_id,notnull,unique:runners_no_dupes" json:"horseID"`
	Horse          string          `bun:"horse,notnull" json:"horse"`
	Age            int             `bun:"age,notnull,default:0" json:"age"`
	Sex            string          `bun:"sex,notnull" json:"sex"`
	Sire           string          `bun:"sire,notnull" json:"sire"`
	Dam            string          `bun:"dam,notnull" json:"dam"`
	Damsire        string          `bun:"damsire,notnull" json:"damsire"`
	Jockey         string          `bun:"jockey,notnull" json:"jockey"`
	Trainer        string          `bun:"trainer,notnull" json:"trainer"`
	Number         int             `bun:"number,notnull,default:0" json:"number"`
	Draw           int             `bun:"draw,notnull,default:0" json:"draw"`
	Lbs            int             `bun:"lbs,notnull,default:0" json:"lbs"`
	OfficialRating int             `bun:"official_rating,notnull,default:0" json:"officialRating"`
	Headgear       *string         `bun:"headgear" json:"headgear,omitempty"`
	Form           string          `bun:"form,notnull" json:"form"`
	Comment        string          `bun:"comment,notnull" json:"comment"`
	IsNonRunner    bool            `bun:"is_non_runner,notnull,default:false" json:"isNonRunner"`
	Odds           json.RawMessage `bun:"odds,notnull,type:jsonb" json:"odds"`
}
