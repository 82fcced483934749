// Package api exposes the entity stores over HTTP. It is thin glue: it
// parses ids, bodies and query filters, delegates to the stores, and maps
// store statuses onto response codes. All domain rules live in lib/store.
package api

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/essildoor/tengu-travels/lib/cache"
	"github.com/essildoor/tengu-travels/lib/store"
)

var log = logger.GetLogger("api")

// Server wires the stores and response caches behind the HTTP routes.
type Server struct {
	users     *store.UserStore
	locations *store.LocationStore
	visits    *store.VisitStore

	userCache     *cache.EntityCache
	locationCache *cache.EntityCache

	router *gin.Engine
}

func NewServer(users *store.UserStore, locations *store.LocationStore, visits *store.VisitStore,
	userCache, locationCache *cache.EntityCache) *Server {

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		users:         users,
		locations:     locations,
		visits:        visits,
		userCache:     userCache,
		locationCache: locationCache,
		router:        gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router

	r.GET("/users/:id", s.getUser)
	r.POST("/users/new", s.createUser)
	r.POST("/users/:id", s.updateUser)
	r.GET("/users/:id/visits", s.getUserVisits)

	r.GET("/locations/:id", s.getLocation)
	r.POST("/locations/new", s.createLocation)
	r.POST("/locations/:id", s.updateLocation)
	r.GET("/locations/:id/avg", s.getLocationAvg)

	r.GET("/visits/:id", s.getVisit)
	r.POST("/visits/new", s.createVisit)
	r.POST("/visits/:id", s.updateVisit)

	r.GET("/metrics", func(c *gin.Context) {
		metrics.WritePrometheus(c.Writer, true)
	})
}

// Router exposes the underlying engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run blocks serving HTTP on the given endpoint.
func (s *Server) Run(endpoint string) error {
	log.Infof("serving HTTP on %s", endpoint)
	return s.router.Run(endpoint)
}
