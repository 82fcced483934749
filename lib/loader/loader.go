// Package loader populates the entity stores from a zip import archive at
// process startup. Archive entries are routed by name prefix to the user,
// location or visit batch parser. User and location batches load in
// parallel on a bounded worker pool; visit batches are held back behind a
// barrier until that phase has fully completed, because each visit is
// enriched with denormalized fields from its referenced user and location
// before insertion.
package loader

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/essildoor/tengu-travels/lib/model"
	"github.com/essildoor/tengu-travels/lib/store"
)

var log = logger.GetLogger("loader")

const defaultWorkers = 4

// Result reports what a load pass accomplished.
type Result struct {
	Users         int
	Locations     int
	Visits        int
	SkippedVisits int // visits dropped for a missing user/location reference
	BadEntries    int // archive entries skipped for parse errors
}

// Loader reads an import archive into the three stores.
// Calling LoadArchive more than once is not supported: already loaded ids
// would conflict with or duplicate the second pass.
type Loader struct {
	users     *store.UserStore
	locations *store.LocationStore
	visits    *store.VisitStore
	workers   int
}

func New(users *store.UserStore, locations *store.LocationStore, visits *store.VisitStore, workers int) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Loader{users: users, locations: locations, visits: visits, workers: workers}
}

// LoadArchive populates the stores from the zip archive at path. A missing
// archive is not an error: the service starts empty. Parse failures skip
// the broken entry and keep loading; visits referencing a user or location
// absent from the corpus are skipped with a warning.
func (l *Loader) LoadArchive(path string) (Result, error) {
	var res Result

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warningf("data file %s not found, starting empty", path)
		return res, nil
	}

	started := time.Now()

	archive, err := zip.OpenReader(path)
	if err != nil {
		return res, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer archive.Close()

	if now, ok := readReferenceTime(archive); ok {
		l.users.SetReferenceTime(now)
	}

	// phase one: users and locations in parallel
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		visitFiles []*zip.File
		jobs       = make(chan *zip.File)
	)
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				users, locations, ok := l.loadEntityEntry(f)
				mu.Lock()
				res.Users += users
				res.Locations += locations
				if !ok {
					res.BadEntries++
				}
				mu.Unlock()
			}
		}()
	}
	for _, f := range archive.File {
		switch {
		case strings.HasPrefix(f.Name, "users_"), strings.HasPrefix(f.Name, "locations_"):
			jobs <- f
		case strings.HasPrefix(f.Name, "visits_"):
			visitFiles = append(visitFiles, f)
		}
	}
	close(jobs)

	// the barrier: no visit may load before every user and location did,
	// otherwise enrichment would read half-loaded stores
	wg.Wait()

	// phase two: visits, enriched from the now complete stores
	visitJobs := make(chan *zip.File)
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range visitJobs {
				loaded, skipped, ok := l.loadVisitEntry(f)
				mu.Lock()
				res.Visits += loaded
				res.SkippedVisits += skipped
				if !ok {
					res.BadEntries++
				}
				mu.Unlock()
			}
		}()
	}
	for _, f := range visitFiles {
		visitJobs <- f
	}
	close(visitJobs)
	wg.Wait()

	log.Infof("%d users, %d locations, %d visits loaded in %.3f sec (%d visits skipped, %d bad entries)",
		res.Users, res.Locations, res.Visits, time.Since(started).Seconds(), res.SkippedVisits, res.BadEntries)

	metrics.GetOrCreateCounter(`tengu_loader_loaded_total{kind="user"}`).Add(res.Users)
	metrics.GetOrCreateCounter(`tengu_loader_loaded_total{kind="location"}`).Add(res.Locations)
	metrics.GetOrCreateCounter(`tengu_loader_loaded_total{kind="visit"}`).Add(res.Visits)

	return res, nil
}

// loadEntityEntry parses one users_* or locations_* entry and bulk loads
// it into the matching store. Returns loaded counts and whether the entry
// parsed cleanly.
func (l *Loader) loadEntityEntry(f *zip.File) (users, locations int, ok bool) {
	rc, err := f.Open()
	if err != nil {
		log.Errorf("open archive entry %s: %v", f.Name, err)
		return 0, 0, false
	}
	defer rc.Close()

	dec := json.NewDecoder(bufio.NewReader(rc))
	if strings.HasPrefix(f.Name, "users_") {
		var batch model.Users
		if err := dec.Decode(&batch); err != nil {
			log.Errorf("parse %s: %v", f.Name, err)
			return 0, 0, false
		}
		return l.users.BulkLoad(batch.Users), 0, true
	}

	var batch model.Locations
	if err := dec.Decode(&batch); err != nil {
		log.Errorf("parse %s: %v", f.Name, err)
		return 0, 0, false
	}
	return 0, l.locations.BulkLoad(batch.Locations), true
}

// loadVisitEntry parses one visits_* entry, enriches every visit with the
// denormalized fields of its references, and bulk loads the surviving
// visits. Visits whose user or location is missing are skipped, not
// inserted with holes.
func (l *Loader) loadVisitEntry(f *zip.File) (loaded, skipped int, ok bool) {
	rc, err := f.Open()
	if err != nil {
		log.Errorf("open archive entry %s: %v", f.Name, err)
		return 0, 0, false
	}
	defer rc.Close()

	var batch model.Visits
	if err := json.NewDecoder(bufio.NewReader(rc)).Decode(&batch); err != nil {
		log.Errorf("parse %s: %v", f.Name, err)
		return 0, 0, false
	}

	userIDs := make(map[int32]struct{}, len(batch.Visits))
	locationIDs := make(map[int32]struct{}, len(batch.Visits))
	for i := range batch.Visits {
		userIDs[batch.Visits[i].UserID] = struct{}{}
		locationIDs[batch.Visits[i].LocationID] = struct{}{}
	}
	users := l.users.Resolve(userIDs)
	locations := l.locations.Resolve(locationIDs)

	enriched := batch.Visits[:0]
	for i := range batch.Visits {
		v := batch.Visits[i]
		u, userOK := users[v.UserID]
		loc, locationOK := locations[v.LocationID]
		if !userOK || !locationOK {
			log.Warningf("visit %d in %s references missing user %d or location %d, skipping",
				v.ID, f.Name, v.UserID, v.LocationID)
			skipped++
			continue
		}
		v.UserAge = u.Age
		v.UserGender = u.Gender
		v.LocationCountry = loc.Country
		v.LocationDistance = loc.Distance
		v.LocationPlace = loc.Place
		enriched = append(enriched, v)
	}

	return l.visits.BulkLoad(enriched), skipped, true
}

// readReferenceTime extracts the corpus "now" timestamp from the options
// entry, when present. Ages are derived against this instant.
func readReferenceTime(archive *zip.ReadCloser) (time.Time, bool) {
	for _, f := range archive.File {
		if !strings.Contains(f.Name, "options") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			log.Errorf("open archive entry %s: %v", f.Name, err)
			return time.Time{}, false
		}
		scanner := bufio.NewScanner(rc)
		if scanner.Scan() {
			if ts, err := strconv.ParseInt(strings.TrimSpace(scanner.Text()), 10, 64); err == nil {
				rc.Close()
				log.Infof("read corpus timestamp %d from %s", ts, f.Name)
				return time.Unix(ts, 0).UTC(), true
			}
		}
		rc.Close()
		log.Warningf("archive entry %s carries no usable timestamp", f.Name)
		return time.Time{}, false
	}
	return time.Time{}, false
}
