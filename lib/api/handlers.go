package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"

	"github.com/essildoor/tengu-travels/lib/model"
	"github.com/essildoor/tengu-travels/lib/store"
)

var emptyObject = []byte("{}")

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

func (s *Server) getUser(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	if body, hit := s.userCache.Get(id); hit {
		c.Data(http.StatusOK, "application/json", body)
		return
	}
	u, exists := s.users.Get(id)
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	body, err := json.Marshal(u)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	s.userCache.Put(id, body)
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) createUser(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := model.ParseUserPatch(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	writeStatus(c, countOp("user", "create", s.users.Create(p)))
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := model.ParseUserPatch(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	st := countOp("user", "update", s.users.Update(id, p))
	if st == store.StatusOK {
		s.userCache.Remove(id)
	}
	writeStatus(c, st)
}

func (s *Server) getUserVisits(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	var f store.VisitFilter
	if f.FromDate, ok = int64Query(c, "fromDate"); !ok {
		return
	}
	if f.ToDate, ok = int64Query(c, "toDate"); !ok {
		return
	}
	f.Country = stringQuery(c, "country")
	if f.ToDistance, ok = int32Query(c, "toDistance"); !ok {
		return
	}

	visits, st := s.visits.VisitsForUser(id, f)
	if st != store.StatusOK {
		writeStatus(c, st)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

// --------------------------------------------------------------------------
// Locations
// --------------------------------------------------------------------------

func (s *Server) getLocation(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	if body, hit := s.locationCache.Get(id); hit {
		c.Data(http.StatusOK, "application/json", body)
		return
	}
	loc, exists := s.locations.Get(id)
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	body, err := json.Marshal(loc)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	s.locationCache.Put(id, body)
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) createLocation(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := model.ParseLocationPatch(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	writeStatus(c, countOp("location", "create", s.locations.Create(p)))
}

func (s *Server) updateLocation(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := model.ParseLocationPatch(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	st := countOp("location", "update", s.locations.Update(id, p))
	if st == store.StatusOK {
		s.locationCache.Remove(id)
	}
	writeStatus(c, st)
}

func (s *Server) getLocationAvg(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	var f store.AvgFilter
	if f.FromDate, ok = int64Query(c, "fromDate"); !ok {
		return
	}
	if f.ToDate, ok = int64Query(c, "toDate"); !ok {
		return
	}
	if f.FromAge, ok = int32Query(c, "fromAge"); !ok {
		return
	}
	if f.ToAge, ok = int32Query(c, "toAge"); !ok {
		return
	}
	f.Gender = stringQuery(c, "gender")
	if f.Gender != nil && !model.ValidGender(*f.Gender) {
		c.Status(http.StatusBadRequest)
		return
	}

	avg, st := s.visits.AverageMark(id, f)
	if st != store.StatusOK {
		writeStatus(c, st)
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(fmt.Sprintf(`{"avg":%.5f}`, avg)))
}

// --------------------------------------------------------------------------
// Visits
// --------------------------------------------------------------------------

func (s *Server) getVisit(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	v, exists := s.visits.Get(id)
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) createVisit(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := model.ParseVisitPatch(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	writeStatus(c, countOp("visit", "create", s.visits.Create(p)))
}

func (s *Server) updateVisit(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := model.ParseVisitPatch(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	writeStatus(c, countOp("visit", "update", s.visits.Update(id, p)))
}

// --------------------------------------------------------------------------
// Request helpers
// --------------------------------------------------------------------------

// entityID parses the id path segment. A malformed id is indistinguishable
// from a nonexistent entity and answers 404.
func entityID(c *gin.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.Status(http.StatusNotFound)
		return 0, false
	}
	return int32(id), true
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func int64Query(c *gin.Context, name string) (*int64, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}
	return &v, true
}

func int32Query(c *gin.Context, name string) (*int32, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}
	v32 := int32(v)
	return &v32, true
}

func stringQuery(c *gin.Context, name string) *string {
	raw, present := c.GetQuery(name)
	if !present {
		return nil
	}
	return &raw
}

// writeStatus maps a store status onto the HTTP contract: writes answer
// with an empty JSON object, absence with 404, rejections with 400.
func writeStatus(c *gin.Context, st store.Status) {
	switch st {
	case store.StatusOK:
		c.Data(http.StatusOK, "application/json", emptyObject)
	case store.StatusNotFound:
		c.Status(http.StatusNotFound)
	default:
		c.Status(http.StatusBadRequest)
	}
}

// countOp bumps the per-kind operation counter and passes the status
// through so call sites stay one-liners.
func countOp(kind, op string, st store.Status) store.Status {
	metrics.GetOrCreateCounter(
		fmt.Sprintf(`tengu_store_ops_total{kind=%q,op=%q,status=%q}`, kind, op, st.String()),
	).Inc()
	return st
}
