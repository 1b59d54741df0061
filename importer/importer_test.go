package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	"github.com/racedaylabs/raceday/db"
	"github.com/racedaylabs/raceday/models"
	"github.com/racedaylabs/raceday/provider"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.CreateTables(context.Background(), bdb); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	t.Cleanup(func() { _ = bdb.Close() })

	return bdb
}

// fakeSource serves canned provider payloads, with optional per-horse and
// day-card failures.
type fakeSource struct {
	cards      []provider.Racecard
	cardsErr   error
	results    map[string][]provider.ResultRace
	resultsErr map[string]error
	analyses   map[string]*provider.DistanceAnalysis
}

func (f *fakeSource) Racecards(ctx context.Context, date string) ([]provider.Racecard, error) {
	if f.cardsErr != nil {
		return nil, f.cardsErr
	}
	return f.cards, nil
}

func (f *fakeSource) HorseResults(ctx context.Context, horseID string) ([]provider.ResultRace, error) {
	if err := f.resultsErr[horseID]; err != nil {
		return nil, err
	}
	return f.results[horseID], nil
}

func (f *fakeSource) HorseDistanceTimes(ctx context.Context, horseID string) (*provider.DistanceAnalysis, error) {
	if a, ok := f.analyses[horseID]; ok {
		return a, nil
	}
	return &provider.DistanceAnalysis{}, nil
}

// progressRecorder wraps Jobs to capture the sequence of progress writes.
type progressRecorder struct {
	inner    *Jobs
	percents []int
}

func (p *progressRecorder) Create(ctx context.Context, date string) (*models.ImportJob, error) {
	return p.inner.Create(ctx, date)
}

func (p *progressRecorder) UpdateProgress(ctx context.Context, job *models.ImportJob, percent int, stats *Stats) {
	p.percents = append(p.percents, percent)
	p.inner.UpdateProgress(ctx, job, percent, stats)
}

func (p *progressRecorder) Complete(ctx context.Context, job *models.ImportJob, stats *Stats) error {
	return p.inner.Complete(ctx, job, stats)
}

func (p *progressRecorder) Fail(ctx context.Context, job *models.ImportJob, cause error, stats *Stats) error {
	return p.inner.Fail(ctx, job, cause, stats)
}

func zeroPacing() Config {
	return Config{RaceBatchSize: 2, RunnerBatchSize: 2, FetchTimeout: 5 * time.Second}
}

func card(raceID string, horseIDs ...string) provider.Racecard {
	c := provider.Racecard{
		RaceID:    provider.Str(raceID),
		Date:      "2026-08-28",
		OffTime:   "13:50",
		Course:    "Ascot",
		CourseID:  "crs_1",
		RaceName:  "Test Stakes",
		Distance:  "1m2f",
		DistanceF: "10.0",
		RaceClass: "Class 2",
		Going:     "Good",
		Surface:   "Turf",
		FieldSize: provider.Str("2"),
	}
	for i, h := range horseIDs {
		c.Runners = append(c.Runners, provider.CardRunner{
			HorseID: provider.Str(h),
			Horse:   provider.Str("Horse " + h),
			Number:  provider.Str(string(rune('1' + i))),
			Jockey:  "J Smith",
			Trainer: "T Jones",
			Lbs:     "140",
		})
	}
	return c
}

func historyRace(raceID, horseID, position string) provider.ResultRace {
	return provider.ResultRace{
		RaceID: provider.Str(raceID),
		Date:   "2026-07-01",
		Course: "York",
		Off:    "14:30",
		Going:  "Soft",
		Runners: []provider.ResultRunner{
			{HorseID: provider.Str(horseID), Horse: provider.Str("Horse " + horseID), Position: provider.Str(position), Weight: "140", Btn: "1.5"},
		},
	}
}

func newTestImporter(t *testing.T, src Source, cfg Config) (*Importer, *bun.DB, *progressRecorder) {
	t.Helper()
	bdb := openTestDB(t)
	rec := &progressRecorder{inner: NewJobs(bdb, zap.NewNop())}
	imp := New(bdb, src, rec, cfg, zap.NewNop())
	return imp, bdb, rec
}

func runJob(t *testing.T, imp *Importer, date string) *models.ImportJob {
	t.Helper()
	ctx := context.Background()
	job, err := imp.jobs.Create(ctx, date)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	imp.Run(ctx, job)
	return job
}

func count(t *testing.T, bdb *bun.DB, model interface{}, where string, args ...interface{}) int {
	t.Helper()
	q := bdb.NewSelect().Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	n, err := q.Count(context.Background())
	if err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func jobStats(t *testing.T, job *models.ImportJob) Stats {
	t.Helper()
	var s Stats
	if err := json.Unmarshal(job.Summary, &s); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	return s
}

func TestImportIdempotence(t *testing.T) {
	src := &fakeSource{
		cards: []provider.Racecard{
			card("rac_1", "hrs_1", "hrs_2"),
			card("rac_2", "hrs_3", "hrs_4"),
		},
		results: map[string][]provider.ResultRace{
			"hrs_1": {historyRace("rac_90", "hrs_1", "1")},
		},
	}
	imp, bdb, _ := newTestImporter(t, src, zeroPacing())

	first := runJob(t, imp, "2026-08-28")
	second := runJob(t, imp, "2026-08-28")

	if got := count(t, bdb, (*models.Race)(nil), ""); got != 2 {
		t.Fatalf("expected 2 races after re-import, got %d", got)
	}
	if got := count(t, bdb, (*models.Runner)(nil), ""); got != 4 {
		t.Fatalf("expected 4 runners after re-import, got %d", got)
	}

	for _, job := range []*models.ImportJob{first, second} {
		if job.Status != models.JobStatusCompleted {
			t.Fatalf("job %s status = %q, want completed", job.ID, job.Status)
		}
		if job.Progress != 100 {
			t.Fatalf("job %s progress = %d, want 100", job.ID, job.Progress)
		}
		s := jobStats(t, job)
		if s.TotalRaces != 2 || s.SuccessfulRaces != 2 || s.FailedRaces != 0 {
			t.Fatalf("job %s race stats = %+v", job.ID, s)
		}
	}
}

func TestHorseResultsFullReplace(t *testing.T) {
	src := &fakeSource{
		cards: []provider.Racecard{card("rac_1", "hrs_1")},
		results: map[string][]provider.ResultRace{
			"hrs_1": {
				historyRace("rac_90", "hrs_1", "1"),
				historyRace("rac_91", "hrs_1", "2"),
				historyRace("rac_92", "hrs_1", "5"),
			},
		},
	}
	imp, bdb, _ := newTestImporter(t, src, zeroPacing())

	runJob(t, imp, "2026-08-28")
	if got := count(t, bdb, (*models.HorseResult)(nil), "horse_id = ?", "hrs_1"); got != 3 {
		t.Fatalf("expected 3 results after first import, got %d", got)
	}

	// Upstream history shrank; the import must replace, not append.
	src.results["hrs_1"] = []provider.ResultRace{historyRace("rac_92", "hrs_1", "5")}
	runJob(t, imp, "2026-08-28")

	if got := count(t, bdb, (*models.HorseResult)(nil), "horse_id = ?", "hrs_1"); got != 1 {
		t.Fatalf("expected 1 result after shrink, got %d", got)
	}
}

func TestDerivedPlacings(t *testing.T) {
	race := provider.ResultRace{
		RaceID: "rac_50",
		Date:   "2026-06-01",
		Runners: []provider.ResultRunner{
			{HorseID: "hrs_9", Horse: "Front Runner", Position: "1", Weight: "138", Btn: "0"},
			{HorseID: "hrs_1", Horse: "Our Horse", Position: "2", Weight: "140", Btn: "1.5"},
			{HorseID: "hrs_7", Horse: "Third Wheel", Position: "3", Weight: "not-a-weight", Btn: "4"},
		},
	}

	row, ok := buildHorseResult("hrs_1", race)
	if !ok {
		t.Fatal("expected a row for hrs_1")
	}
	if row.Position != "2" {
		t.Fatalf("position = %q, want 2", row.Position)
	}
	if row.Winner != "Front Runner" || row.Second != "Our Horse" || row.Third != "Third Wheel" {
		t.Fatalf("placings = %q/%q/%q", row.Winner, row.Second, row.Third)
	}
	if row.WinnerWeight == nil || *row.WinnerWeight != 138 {
		t.Fatalf("winner weight = %v, want 138", row.WinnerWeight)
	}
	// Unparseable weights stay nil, never zero.
	if row.ThirdWeight != nil {
		t.Fatalf("third weight = %v, want nil", *row.ThirdWeight)
	}
	if row.WinnerBtn != "0" || row.ThirdBtn != "4" {
		t.Fatalf("beaten distances = %q/%q", row.WinnerBtn, row.ThirdBtn)
	}

	if _, ok := buildHorseResult("hrs_absent", race); ok {
		t.Fatal("expected no row for a horse missing from the runner list")
	}
}

func TestZeroRacesCompletesImmediately(t *testing.T) {
	src := &fakeSource{}
	imp, _, rec := newTestImporter(t, src, zeroPacing())

	job := runJob(t, imp, "2026-08-28")

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	if job.Progress != 100 {
		t.Fatalf("progress = %d, want 100", job.Progress)
	}
	if s := jobStats(t, job); s.TotalRaces != 0 {
		t.Fatalf("totalRaces = %d, want 0", s.TotalRaces)
	}
	if len(rec.percents) != 0 {
		t.Fatalf("expected no batch progress writes, got %v", rec.percents)
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	src := &fakeSource{
		cards:      []provider.Racecard{card("rac_1", "hrs_1", "hrs_2", "hrs_3", "hrs_4", "hrs_5")},
		resultsErr: map[string]error{"hrs_3": errors.New("upstream 500")},
	}
	imp, bdb, _ := newTestImporter(t, src, zeroPacing())

	job := runJob(t, imp, "2026-08-28")

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	s := jobStats(t, job)
	if s.HorseResults.Attempted != 5 {
		t.Fatalf("horseResults.attempted = %d, want 5", s.HorseResults.Attempted)
	}
	if s.HorseResults.Failed != 1 {
		t.Fatalf("horseResults.failed = %d, want 1", s.HorseResults.Failed)
	}
	if s.HorseResults.Successful != 4 {
		t.Fatalf("horseResults.successful = %d, want 4", s.HorseResults.Successful)
	}
	// The failing horse's runner row is still upserted.
	if got := count(t, bdb, (*models.Runner)(nil), ""); got != 5 {
		t.Fatalf("expected 5 runners, got %d", got)
	}
}

func TestFatalFetchFailsJob(t *testing.T) {
	src := &fakeSource{cardsErr: errors.New("racecards unavailable")}
	imp, _, rec := newTestImporter(t, src, zeroPacing())

	job := runJob(t, imp, "2026-08-28")

	if job.Status != models.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if job.Progress != 0 {
		t.Fatalf("progress = %d, want 0", job.Progress)
	}
	if job.Error == nil || *job.Error == "" {
		t.Fatal("expected error message on failed job")
	}
	if len(rec.percents) != 0 {
		t.Fatalf("expected no progress writes, got %v", rec.percents)
	}
}

func TestProgressMonotonic(t *testing.T) {
	src := &fakeSource{
		cards: []provider.Racecard{
			card("rac_1", "hrs_1"),
			card("rac_2", "hrs_2"),
			card("rac_3", "hrs_3"),
			card("rac_4", "hrs_4"),
			card("rac_5", "hrs_5"),
		},
	}
	imp, _, rec := newTestImporter(t, src, zeroPacing())

	job := runJob(t, imp, "2026-08-28")

	if job.Status != models.JobStatusCompleted || job.Progress != 100 {
		t.Fatalf("job = %q/%d, want completed/100", job.Status, job.Progress)
	}
	if len(rec.percents) == 0 {
		t.Fatal("expected progress writes")
	}
	prev := -1
	for _, p := range rec.percents {
		if p < prev {
			t.Fatalf("progress regressed: %v", rec.percents)
		}
		prev = p
	}
	if rec.percents[len(rec.percents)-1] != 100 {
		t.Fatalf("final batch progress = %d, want 100", rec.percents[len(rec.percents)-1])
	}
}

func TestDistanceAnalysisFullReplace(t *testing.T) {
	analysis := &provider.DistanceAnalysis{
		ID:        "hrs_1",
		Horse:     "Horse hrs_1",
		TotalRuns: "12",
		Distances: []provider.DistanceEntry{
			{
				Dist: "1m", DistF: "8.0", Runs: "7",
				Wins: "2", SecondPlaces: "1", ThirdPlaces: "1", FourthPlaces: "0",
				AEIndex: "1.12", WinPct: "28.6", PlaceIndex: "0.57",
				Times: []provider.DistanceTime{
					{Date: "2026-05-01", Course: "York", Time: "1:38.2", Position: "1"},
					{Date: "2026-04-01", Course: "Ascot", Time: "1:40.0", Position: "3"},
				},
			},
			{
				Dist: "1m2f", DistF: "10.0", Runs: "5", Wins: "1",
				Times: []provider.DistanceTime{
					{Date: "2026-03-01", Course: "Epsom", Time: "2:05.1", Position: "1"},
				},
			},
		},
	}
	src := &fakeSource{
		cards:    []provider.Racecard{card("rac_1", "hrs_1")},
		analyses: map[string]*provider.DistanceAnalysis{"hrs_1": analysis},
	}
	imp, bdb, _ := newTestImporter(t, src, zeroPacing())

	runJob(t, imp, "2026-08-28")

	if got := count(t, bdb, (*models.HorseDistanceAnalysis)(nil), "horse_id = ?", "hrs_1"); got != 1 {
		t.Fatalf("expected 1 analysis row, got %d", got)
	}
	if got := count(t, bdb, (*models.HorseDistanceDetail)(nil), ""); got != 2 {
		t.Fatalf("expected 2 detail rows, got %d", got)
	}
	if got := count(t, bdb, (*models.HorseDistanceTime)(nil), ""); got != 3 {
		t.Fatalf("expected 3 time rows, got %d", got)
	}

	var detail models.HorseDistanceDetail
	err := bdb.NewSelect().Model(&detail).Where("dist = ?", "1m").Scan(context.Background())
	if err != nil {
		t.Fatalf("select detail: %v", err)
	}
	if detail.Wins != 2 || detail.SecondPlaces != 1 || detail.FourthPlaces != 0 {
		t.Fatalf("detail places = %d/%d/%d", detail.Wins, detail.SecondPlaces, detail.FourthPlaces)
	}
	if detail.AEIndex != 1.12 || detail.WinPercentage != 28.6 || detail.PlaceIndex != 0.57 {
		t.Fatalf("detail indices = %v/%v/%v", detail.AEIndex, detail.WinPercentage, detail.PlaceIndex)
	}

	// Second import with a smaller payload must replace the hierarchy
	// without leaving orphan detail/time rows.
	analysis.Distances = analysis.Distances[:1]
	runJob(t, imp, "2026-08-28")

	if got := count(t, bdb, (*models.HorseDistanceAnalysis)(nil), ""); got != 1 {
		t.Fatalf("expected 1 analysis row after replace, got %d", got)
	}
	if got := count(t, bdb, (*models.HorseDistanceDetail)(nil), ""); got != 1 {
		t.Fatalf("expected 1 detail row after replace, got %d", got)
	}
	if got := count(t, bdb, (*models.HorseDistanceTime)(nil), ""); got != 2 {
		t.Fatalf("expected 2 time rows after replace, got %d", got)
	}
}

func TestRunnerUpdatesOnReimport(t *testing.T) {
	c := card("rac_1", "hrs_1")
	src := &fakeSource{cards: []provider.Racecard{c}}
	imp, bdb, _ := newTestImporter(t, src, zeroPacing())

	runJob(t, imp, "2026-08-28")

	// Horse withdrawn and odds published before the second import.
	c.Runners[0].IsNonRunner = true
	c.Runners[0].Odds = []provider.Odd{{Bookmaker: "BetCo", Fractional: "5/2", Decimal: "3.5"}}
	src.cards = []provider.Racecard{c}

	runJob(t, imp, "2026-08-28")

	var runner models.Runner
	err := bdb.NewSelect().Model(&runner).
		Where("race_id = ? AND horse_id = ?", "rac_1", "hrs_1").
		Scan(context.Background())
	if err != nil {
		t.Fatalf("select runner: %v", err)
	}
	if !runner.IsNonRunner {
		t.Fatal("expected is_non_runner after re-import")
	}
	var odds []provider.Odd
	if err := json.Unmarshal(runner.Odds, &odds); err != nil {
		t.Fatalf("unmarshal odds: %v", err)
	}
	if len(odds) != 1 || odds[0].Bookmaker.String() != "BetCo" {
		t.Fatalf("odds = %+v", odds)
	}
}

func TestStartReturnsJobID(t *testing.T) {
	src := &fakeSource{cards: []provider.Racecard{card("rac_1", "hrs_1")}}
	imp, bdb, _ := newTestImporter(t, src, zeroPacing())

	jobID, err := imp.Start(context.Background(), "2026-08-28")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if jobID == "" {
		t.Fatal("expected a job id")
	}

	// The pipeline runs in the background; poll until it leaves processing.
	deadline := time.Now().Add(5 * time.Second)
	for {
		job := new(models.ImportJob)
		err := bdb.NewSelect().Model(job).Where("id = ?", jobID).Scan(context.Background())
		if err != nil {
			t.Fatalf("poll job: %v", err)
		}
		if job.Status != models.JobStatusProcessing {
			if job.Status != models.JobStatusCompleted {
				t.Fatalf("status = %q, want completed", job.Status)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("job did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
