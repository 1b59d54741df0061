package importer

// Counters tracks outcomes for one category of horse-level work. Attempted
// is bumped on entry, so attempted >= successful + failed holds for
// completed runs but is not enforced.
type Counters struct {
	Attempted  int `json:"attempted"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Stats is the running summary for one import job. It is owned by a single
// job run and mutated sequentially through the pipeline, so no locking is
// needed; a snapshot is serialized into the job record on every progress
// write.
type Stats struct {
	TotalRaces       int      `json:"totalRaces"`
	SuccessfulRaces  int      `json:"successfulRaces"`
	FailedRaces      int      `json:"failedRaces"`
	HorseResults     Counters `json:"horseResults"`
	DistanceAnalysis Counters `json:"distanceAnalysis"`
}
