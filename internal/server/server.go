package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/planner"
	"github.com/username/leave-planner/internal/store"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// Options configures a Server
type Options struct {
	Planner         planner.Options
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	RateLimit       float64
	RateBurst       int
}

// Server exposes planning sessions over HTTP
type Server struct {
	router   *gin.Engine
	registry *calendar.Registry
	sessions *Sessions
	metrics  *Metrics
	logger   *zap.Logger

	status func() map[string]interface{}
}

// New creates a server with its routes and middleware
func New(registry *calendar.Registry, repo *store.PlanRepository, opts Options, logger *zap.Logger) *Server {
	registerValidators()

	metrics := NewMetrics()
	s := &Server{
		router:   gin.New(),
		registry: registry,
		sessions: NewSessions(registry, repo, opts.Planner, opts.SessionTTL, opts.CleanupInterval, metrics, logger),
		metrics:  metrics,
		logger:   logger,
	}

	s.router.Use(
		gin.Recovery(),
		RequestID(),
		Logger(logger),
		metrics.Middleware(),
	)

	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", metrics.Handler())

	api := s.router.Group("/api")
	api.Use(NewRateLimiter(opts.RateLimit, opts.RateBurst).RateLimit())
	{
		api.GET("/regions", s.listRegions)
		api.GET("/regions/:region/holidays", s.listHolidays)
		api.GET("/regions/:region/strategies", s.listStrategies)

		api.POST("/sessions", s.createSession)

		session := api.Group("/sessions/:id")
		{
			session.GET("", s.getSession)
			session.GET("/days", s.listDays)
			session.POST("/press", s.press)
			session.POST("/enter", s.enter)
			session.POST("/release", s.release)
			session.POST("/strategies/:strategy", s.applyStrategy)
			session.POST("/dates", s.applyDates)
			session.DELETE("/leave", s.clearAll)
			session.POST("/save", s.save)
			session.POST("/load", s.load)
			session.PUT("/region", s.setRegion)
		}
	}

	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetStatus adds the result of status to the health report
func (s *Server) SetStatus(status func() map[string]interface{}) {
	s.status = status
}

// Housekeeping purges expired sessions
func (s *Server) Housekeeping() {
	remaining := s.sessions.Purge()
	s.logger.Debug("Session housekeeping", zap.Int("sessions", remaining))
}

type dateRequest struct {
	Date string `json:"date" binding:"required,isodate"`
}

type datesRequest struct {
	Dates []string `json:"dates" binding:"required,min=1,dive,isodate"`
}

type regionRequest struct {
	Region string `json:"region" binding:"required,region"`
}

type createSessionRequest struct {
	Region string `json:"region" binding:"omitempty,region"`
}

type monthQuery struct {
	Month int `form:"month" binding:"required,min=1,max=12"`
}

type regionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type holidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type strategyResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Dates        []string `json:"dates"`
	TotalDaysOff int      `json:"total_days_off"`
	BankHolidays []string `json:"bank_holidays"`
}

type streakResponse struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Length int    `json:"length"`
}

type dragResponse struct {
	Anchor  string `json:"anchor"`
	Current string `json:"current"`
	Mode    string `json:"mode"`
}

type snapshotResponse struct {
	SessionID      string           `json:"session_id"`
	CreatedAt      time.Time        `json:"created_at"`
	Year           int              `json:"year"`
	Region         string           `json:"region"`
	RegionName     string           `json:"region_name"`
	Leave          []string         `json:"leave"`
	LeaveCount     int              `json:"leave_count"`
	MaxConsecutive int              `json:"max_consecutive"`
	Streaks        []streakResponse `json:"streaks"`
	Drag           *dragResponse    `json:"drag,omitempty"`
}

type dayResponse struct {
	Date            string `json:"date"`
	Type            string `json:"type"`
	HolidayName     string `json:"holiday_name,omitempty"`
	Selected        bool   `json:"selected"`
	InStreak        bool   `json:"in_streak"`
	InPreview       bool   `json:"in_preview"`
	PreviewSelected bool   `json:"preview_selected"`
}

func toSnapshotResponse(session *Session, snap planner.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		SessionID:      session.ID,
		CreatedAt:      session.CreatedAt,
		Year:           snap.Year,
		Region:         string(snap.Region),
		RegionName:     snap.Region.DisplayName(),
		Leave:          snap.Plan.Strings(),
		LeaveCount:     snap.LeaveCount(),
		MaxConsecutive: snap.MaxConsecutive(),
		Streaks:        make([]streakResponse, 0, len(snap.Streaks())),
	}
	for _, st := range snap.Streaks() {
		resp.Streaks = append(resp.Streaks, streakResponse{
			Start:  dateutil.Format(st.Start),
			End:    dateutil.Format(st.End),
			Length: st.Length,
		})
	}
	if snap.Overlay != nil {
		resp.Drag = &dragResponse{
			Anchor:  dateutil.Format(snap.Overlay.Anchor),
			Current: dateutil.Format(snap.Overlay.Current),
			Mode:    snap.Overlay.Mode.String(),
		}
	}
	return resp
}

func toStrategyResponse(s planner.Strategy) strategyResponse {
	dates := make([]string, len(s.Dates))
	for i, d := range s.Dates {
		dates[i] = dateutil.Format(d)
	}
	return strategyResponse{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Dates:        dates,
		TotalDaysOff: s.TotalDaysOff,
		BankHolidays: s.BankHolidays,
	}
}

func (s *Server) health(c *gin.Context) {
	report := gin.H{
		"sessions": s.sessions.Count(),
	}
	if s.status != nil {
		report["daemon"] = s.status()
	}
	c.JSON(http.StatusOK, newSuccessResponse(report))
}

func (s *Server) listRegions(c *gin.Context) {
	regions := make([]regionResponse, 0, len(calendar.Regions()))
	for _, r := range calendar.Regions() {
		regions = append(regions, regionResponse{ID: string(r), Name: r.DisplayName()})
	}
	c.JSON(http.StatusOK, newSuccessResponse(regions))
}

func (s *Server) regionParam(c *gin.Context) (calendar.Region, bool) {
	region, err := calendar.ParseRegion(c.Param("region"))
	if err != nil {
		c.JSON(http.StatusNotFound, newErrorResponse(err.Error()))
		return "", false
	}
	return region, true
}

func (s *Server) listHolidays(c *gin.Context) {
	region, ok := s.regionParam(c)
	if !ok {
		return
	}

	holidays := make([]holidayResponse, 0)
	for _, h := range s.registry.Table(region).Holidays() {
		if h.Date.Year() != s.registry.Year() {
			continue
		}
		holidays = append(holidays, holidayResponse{Date: dateutil.Format(h.Date), Name: h.Name})
	}
	c.JSON(http.StatusOK, newSuccessResponse(holidays))
}

func (s *Server) listStrategies(c *gin.Context) {
	region, ok := s.regionParam(c)
	if !ok {
		return
	}

	strategies := make([]strategyResponse, 0)
	for _, st := range planner.Strategies(region, s.registry.Year()) {
		strategies = append(strategies, toStrategyResponse(st))
	}
	c.JSON(http.StatusOK, newSuccessResponse(strategies))
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
	}

	region, _ := calendar.ParseRegion(req.Region)
	session, err := s.sessions.Create(c.Request.Context(), region)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSuccessResponse(toSnapshotResponse(session, session.Controller.Snapshot())))
}

// session resolves the :id parameter or writes a 404
func (s *Server) session(c *gin.Context) (*Session, bool) {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, newErrorResponse(err.Error()))
		return nil, false
	}
	return session, true
}

func (s *Server) getSession(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, session.Controller.Snapshot())))
}

func (s *Server) listDays(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	var q monthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	snap := session.Controller.Snapshot()
	days := make([]dayResponse, 0, 31)
	for _, d := range snap.Month(time.Month(q.Month)) {
		days = append(days, dayResponse{
			Date:            dateutil.Format(d.Date),
			Type:            d.Type.String(),
			HolidayName:     d.HolidayName,
			Selected:        d.Selected,
			InStreak:        d.InStreak,
			InPreview:       d.InPreview,
			PreviewSelected: d.PreviewSelected,
		})
	}
	c.JSON(http.StatusOK, newSuccessResponse(days))
}

func (s *Server) press(c *gin.Context) {
	s.dateEvent(c, func(ctl *planner.Controller, date time.Time) planner.Snapshot {
		return ctl.Press(date)
	})
}

func (s *Server) enter(c *gin.Context) {
	s.dateEvent(c, func(ctl *planner.Controller, date time.Time) planner.Snapshot {
		return ctl.Enter(date)
	})
}

func (s *Server) dateEvent(c *gin.Context, apply func(*planner.Controller, time.Time) planner.Snapshot) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	snap := apply(session.Controller, dateutil.MustParse(req.Date))
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, snap)))
}

func (s *Server) release(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	snap := session.Controller.Release(c.Request.Context())
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, snap)))
}

func (s *Server) applyStrategy(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	snap, err := session.Controller.ApplyStrategy(c.Request.Context(), c.Param("strategy"))
	if err != nil {
		if errors.Is(err, planner.ErrUnknownStrategy) {
			c.JSON(http.StatusNotFound, newErrorResponse(err.Error()))
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, snap)))
}

func (s *Server) applyDates(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	var req datesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	dates := make([]time.Time, len(req.Dates))
	for i, d := range req.Dates {
		dates[i] = dateutil.MustParse(d)
	}

	snap := session.Controller.ApplyDates(c.Request.Context(), dates)
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, snap)))
}

func (s *Server) clearAll(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	snap := session.Controller.ClearAll(c.Request.Context())
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, snap)))
}

func (s *Server) save(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	if err := session.Controller.Save(c.Request.Context()); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMessageResponse("Plan Saved Locally!",
		toSnapshotResponse(session, session.Controller.Snapshot())))
}

func (s *Server) load(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	snap, err := session.Controller.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, planner.ErrNoSavedPlan) {
			c.JSON(http.StatusNotFound, newErrorResponse("No saved plan found."))
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMessageResponse("Plan Loaded!", toSnapshotResponse(session, snap)))
}

func (s *Server) setRegion(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	region, _ := calendar.ParseRegion(req.Region)
	snap := session.Controller.SetRegion(region)
	c.JSON(http.StatusOK, newSuccessResponse(toSnapshotResponse(session, snap)))
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, &Response{
		Status:  "error",
		Message: "validation failed",
		Data:    validationMessages(err),
	})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("Request failed",
		zap.String("request_id", c.GetString(ContextRequestID)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, newErrorResponse("internal error"))
}
