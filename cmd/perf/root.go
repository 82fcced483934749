package perf

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/essildoor/tengu-travels/cmd/util"
	"github.com/essildoor/tengu-travels/lib/logging"
	"github.com/essildoor/tengu-travels/lib/model"
	"github.com/essildoor/tengu-travels/lib/store"
)

var (
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the travels stores",
		Long:    `Generates a synthetic corpus of users, locations and visits, then runs a mixed read/write workload against the in-process stores and reports per-operation latency percentiles.`,
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfNumUsers     = 10000
	perfNumLocations = 2000
	perfNumVisits    = 50000
	perfNumThreads   = 8
	perfNumOps       = 200000
	perfSeed         = int64(1)
)

func init() {
	// add flags
	key := "users"
	PerfCmd.PersistentFlags().Int(key, 10000, util.WrapString("Number of synthetic users to generate"))
	key = "locations"
	PerfCmd.PersistentFlags().Int(key, 2000, util.WrapString("Number of synthetic locations to generate"))
	key = "visits"
	PerfCmd.PersistentFlags().Int(key, 50000, util.WrapString("Number of synthetic visits to generate"))
	key = "threads"
	PerfCmd.PersistentFlags().Int(key, 8, util.WrapString("Number of threads to use for the benchmark"))
	key = "ops"
	PerfCmd.PersistentFlags().Int(key, 200000, util.WrapString("Total number of operations to run across all threads"))
	key = "seed"
	PerfCmd.PersistentFlags().Int64(key, 1, util.WrapString("Seed for the corpus and workload generators"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumUsers = viper.GetInt("users")
	perfNumLocations = viper.GetInt("locations")
	perfNumVisits = viper.GetInt("visits")
	perfNumThreads = viper.GetInt("threads")
	perfNumOps = viper.GetInt("ops")
	perfSeed = viper.GetInt64("seed")

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	logging.Init("warn")

	fmt.Println("Performance testing tool for the travels stores")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Users:     %d\n", perfNumUsers)
	fmt.Printf("  Locations: %d\n", perfNumLocations)
	fmt.Printf("  Visits:    %d\n", perfNumVisits)
	fmt.Printf("  Threads:   %d\n", perfNumThreads)
	fmt.Printf("  Ops:       %d\n", perfNumOps)
	fmt.Println()

	users, locations, visits := buildCorpus()
	fmt.Printf("corpus ready: %d users, %d locations, %d visits\n\n", users.Len(), locations.Len(), visits.Len())

	registry := gometrics.NewRegistry()
	timers := map[string]gometrics.Timer{
		"get-user":    gometrics.GetOrRegisterTimer("get-user", registry),
		"get-visit":   gometrics.GetOrRegisterTimer("get-visit", registry),
		"user-visits": gometrics.GetOrRegisterTimer("user-visits", registry),
		"avg":         gometrics.GetOrRegisterTimer("avg", registry),
		"update-mark": gometrics.GetOrRegisterTimer("update-mark", registry),
	}

	fmt.Println("starting workload...")
	started := time.Now()

	var wg sync.WaitGroup
	opsPerThread := perfNumOps / perfNumThreads
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < opsPerThread; i++ {
				userID := int32(rng.Intn(perfNumUsers) + 1)
				locationID := int32(rng.Intn(perfNumLocations) + 1)
				visitID := int32(rng.Intn(perfNumVisits) + 1)

				switch i % 10 {
				case 0: // occasional write
					mark := int32(rng.Intn(6))
					timers["update-mark"].Time(func() {
						visits.Update(visitID, &model.VisitPatch{Mark: &mark})
					})
				case 1, 2:
					timers["get-visit"].Time(func() {
						visits.Get(visitID)
					})
				case 3, 4:
					timers["user-visits"].Time(func() {
						visits.VisitsForUser(userID, store.VisitFilter{})
					})
				case 5, 6:
					timers["avg"].Time(func() {
						visits.AverageMark(locationID, store.AvgFilter{})
					})
				default:
					timers["get-user"].Time(func() {
						users.Get(userID)
					})
				}
			}
		}(perfSeed + int64(t))
	}
	wg.Wait()

	elapsed := time.Since(started)
	fmt.Printf("workload done in %s\n\n", elapsed)
	fmt.Printf("%-15s%10s%14s%14s%14s%14s\n", "op", "count", "mean", "p50", "p95", "p99")
	for _, name := range []string{"get-user", "get-visit", "user-visits", "avg", "update-mark"} {
		printResult(name, timers[name])
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// buildCorpus generates a deterministic synthetic corpus with ids 1..n per
// entity kind and loads it the same way the archive import does.
func buildCorpus() (*store.UserStore, *store.LocationStore, *store.VisitStore) {
	users := store.NewUserStore()
	locations := store.NewLocationStore()
	visits := store.NewVisitStore(users, locations)
	users.AttachVisits(visits)
	locations.AttachVisits(visits)

	rng := rand.New(rand.NewSource(perfSeed))
	now := users.ReferenceTime()

	genders := []string{model.GenderMale, model.GenderFemale}
	birthFrom := time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	birthTo := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	visitFrom := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	visitTo := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	userBatch := make([]model.User, perfNumUsers)
	for i := range userBatch {
		birth := birthFrom + rng.Int63n(birthTo-birthFrom)
		userBatch[i] = model.User{
			ID:        int32(i + 1),
			Email:     fmt.Sprintf("user%d@example.com", i+1),
			FirstName: fmt.Sprintf("First%d", i+1),
			LastName:  fmt.Sprintf("Last%d", i+1),
			Gender:    genders[rng.Intn(2)],
			BirthDate: birth,
			Age:       model.AgeAt(birth, now),
		}
	}
	users.BulkLoad(userBatch)

	locationBatch := make([]model.Location, perfNumLocations)
	for i := range locationBatch {
		locationBatch[i] = model.Location{
			ID:       int32(i + 1),
			Place:    fmt.Sprintf("Place %d", i+1),
			Country:  fmt.Sprintf("Country %d", rng.Intn(50)),
			City:     fmt.Sprintf("City %d", rng.Intn(500)),
			Distance: int32(rng.Intn(100)),
		}
	}
	locations.BulkLoad(locationBatch)

	visitBatch := make([]model.Visit, perfNumVisits)
	for i := range visitBatch {
		u := userBatch[rng.Intn(perfNumUsers)]
		loc := locationBatch[rng.Intn(perfNumLocations)]
		visitBatch[i] = model.Visit{
			ID:               int32(i + 1),
			LocationID:       loc.ID,
			UserID:           u.ID,
			VisitedAt:        visitFrom + rng.Int63n(visitTo-visitFrom),
			Mark:             int32(rng.Intn(6)),
			UserAge:          u.Age,
			UserGender:       u.Gender,
			LocationCountry:  loc.Country,
			LocationDistance: loc.Distance,
			LocationPlace:    loc.Place,
		}
	}
	visits.BulkLoad(visitBatch)

	return users, locations, visits
}

// printResult prints one timer row in a formatted way
func printResult(name string, timer gometrics.Timer) {
	snap := timer.Snapshot()
	if snap.Count() == 0 {
		fmt.Printf("%-15sskipped\n", name)
		return
	}
	ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-15s%10d%14s%14s%14s%14s\n",
		name,
		snap.Count(),
		time.Duration(int64(snap.Mean())),
		time.Duration(int64(ps[0])),
		time.Duration(int64(ps[1])),
		time.Duration(int64(ps[2])),
	)
}
