package provider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Str is a provider scalar. The upstream API is loose about JSON types –
// the same field can arrive as a string, a number, or null depending on the
// endpoint – so every leaf field decodes through this type and callers pick
// a coercion explicitly.
type Str string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (s *Str) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Str(v)
		return nil
	}
	*s = Str(strings.TrimSpace(string(b)))
	return nil
}

func (s Str) String() string { return string(s) }

// Int coerces to an integer, defaulting to 0 on missing or unparseable
// input. Card/runner numerics use this policy.
func (s Str) Int() int {
	t := strings.TrimSpace(string(s))
	if t == "" {
		return 0
	}
	if n, err := strconv.Atoi(t); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return int(f)
	}
	return 0
}

// IntPtr coerces to a nullable integer: unparseable input stays nil rather
// than collapsing to zero. Historical weight fields use this policy.
func (s Str) IntPtr() *int {
	t := strings.TrimSpace(string(s))
	if t == "" {
		return nil
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return nil
	}
	return &n
}

// Float coerces to a float64, defaulting to 0 on missing or unparseable input.
func (s Str) Float() float64 {
	t := strings.TrimSpace(string(s))
	if t == "" {
		return 0
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return f
}

// Racecard is one race on a day's card, with its entrants nested.
type Racecard struct {
	RaceID      Str          `json:"race_id"`
	Date        Str          `json:"date"`
	OffTime     Str          `json:"off_time"`
	Course      Str          `json:"course"`
	CourseID    Str          `json:"course_id"`
	RaceName    Str          `json:"race_name"`
	Distance    Str          `json:"distance"`
	DistanceF   Str          `json:"distance_f"`
	Region      Str          `json:"region"`
	RaceClass   Str          `json:"race_class"`
	AgeBand     Str          `json:"age_band"`
	RatingBand  Str          `json:"rating_band"`
	Going       Str          `json:"going"`
	Surface     Str          `json:"surface"`
	Prize       Str          `json:"prize"`
	FieldSize   Str          `json:"field_size"`
	BigRace     bool         `json:"big_race"`
	IsAbandoned bool         `json:"is_abandoned"`
	Runners     []CardRunner `json:"runners"`
}

// CardRunner is one entrant on a racecard.
type CardRunner struct {
	HorseID     Str   `json:"horse_id"`
	Horse       Str   `json:"horse"`
	Age         Str   `json:"age"`
	Sex         Str   `json:"sex"`
	Sire        Str   `json:"sire"`
	Dam         Str   `json:"dam"`
	Damsire     Str   `json:"damsire"`
	Jockey      Str   `json:"jockey"`
	Trainer     Str   `json:"trainer"`
	Number      Str   `json:"number"`
	Draw        Str   `json:"draw"`
	Lbs         Str   `json:"lbs"`
	Ofr         Str   `json:"ofr"`
	Headgear    Str   `json:"headgear"`
	Form        Str   `json:"form"`
	Comment     Str   `json:"comment"`
	IsNonRunner bool  `json:"is_non_runner"`
	Odds        []Odd `json:"odds"`
}

// Odd is a single bookmaker quote for a runner.
type Odd struct {
	Bookmaker  Str `json:"bookmaker"`
	Fractional Str `json:"fractional"`
	Decimal    Str `json:"decimal"`
	Updated    Str `json:"updated"`
}

// ResultRace is one historical race a horse ran in, with the full finishing
// field nested so the caller can derive placed-horse columns.
type ResultRace struct {
	RaceID   Str            `json:"race_id"`
	Date     Str            `json:"date"`
	Course   Str            `json:"course"`
	CourseID Str            `json:"course_id"`
	Off      Str            `json:"off"`
	Distance Str            `json:"dist"`
	Going    Str            `json:"going"`
	Class    Str            `json:"class"`
	Runners  []ResultRunner `json:"runners"`
}

// ResultRunner is one horse's line within a historical race.
type ResultRunner struct {
	HorseID  Str `json:"horse_id"`
	Horse    Str `json:"horse"`
	Position Str `json:"position"`
	Weight   Str `json:"weight_lbs"`
	SP       Str `json:"sp"`
	Btn      Str `json:"btn"`
	OvrBtn   Str `json:"ovr_btn"`
	Jockey   Str `json:"jockey"`
	Trainer  Str `json:"trainer"`
	OR       Str `json:"or"`
	RPR      Str `json:"rpr"`
	Comment  Str `json:"comment"`
}

// DistanceAnalysis is a horse's distance/time performance breakdown. An
// empty ID means the provider has no analysis for the horse.
type DistanceAnalysis struct {
	ID        Str             `json:"id"`
	Horse     Str             `json:"horse"`
	Sire      Str             `json:"sire"`
	SireID    Str             `json:"sire_id"`
	Dam       Str             `json:"dam"`
	DamID     Str             `json:"dam_id"`
	Damsire   Str             `json:"damsire"`
	DamsireID Str             `json:"damsire_id"`
	TotalRuns Str             `json:"total_runs"`
	Distances []DistanceEntry `json:"distances"`
}

// DistanceEntry is one distance bucket. The provider's short keys (1st,
// a/e, win_%, 1_pl) are mapped here and nowhere else.
type DistanceEntry struct {
	Dist         Str            `json:"dist"`
	DistY        Str            `json:"dist_y"`
	DistM        Str            `json:"dist_m"`
	DistF        Str            `json:"dist_f"`
	Runs         Str            `json:"runs"`
	Wins         Str            `json:"1st"`
	SecondPlaces Str            `json:"2nd"`
	ThirdPlaces  Str            `json:"3rd"`
	FourthPlaces Str            `json:"4th"`
	AEIndex      Str            `json:"a/e"`
	WinPct       Str            `json:"win_%"`
	PlaceIndex   Str            `json:"1_pl"`
	Times        []DistanceTime `json:"times"`
}

// DistanceTime is one timed run at a distance.
type DistanceTime struct {
	Date     Str `json:"date"`
	Region   Str `json:"region"`
	Course   Str `json:"course"`
	CourseID Str `json:"course_id"`
	Time     Str `json:"time"`
	Going    Str `json:"going"`
	Position Str `json:"position"`
}
