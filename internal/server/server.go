// Package server exposes the reconciliation backend over HTTP. The
// routes mirror what the review frontend consumes; handlers stay thin
// and delegate to the backend.
package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizforge/dupereview/internal/backend"
	"github.com/quizforge/dupereview/internal/model"
	"github.com/quizforge/dupereview/internal/review"
)

type Server struct {
	cfg     *model.Config
	backend *backend.Local
}

func NewServer(cfg *model.Config) *Server {
	return &Server{
		cfg:     cfg,
		backend: backend.NewLocal(cfg),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/api/subjects", s.GetSubjects)
	r.GET("/api/session/:subject", s.CheckSession)
	r.GET("/api/groups/:subject", s.GetGroups)
	r.GET("/api/summary/:subject", s.GetSummary)
	r.GET("/api/preparation-stats/:subject", s.GetPreparationStats)

	r.POST("/api/batch-file-statuses", s.BatchFileStatuses)
	r.POST("/api/batch-mcq-data", s.BatchFileContent)
	r.POST("/api/submit-group", s.SubmitGroup)
	r.POST("/api/auto-select-best", s.AutoSelectBest)
	r.POST("/api/track-removed/:subject", s.TrackRemoved)

	r.DELETE("/api/session/:subject", s.ClearSession)

	return r
}

// Run blocks serving the API on the configured address
func (s *Server) Run() error {
	return s.SetupRouter().Run(s.cfg.Server.Addr)
}

func (s *Server) GetSubjects(c *gin.Context) {
	subjects, err := s.backend.ListSubjects()
	if err != nil {
		log.Printf("Failed to list subjects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subjects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (s *Server) CheckSession(c *gin.Context) {
	check, err := s.backend.CheckSession(c.Request.Context(), c.Param("subject"))
	if err != nil {
		log.Printf("Failed to check session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check session"})
		return
	}
	c.JSON(http.StatusOK, check)
}

func (s *Server) GetGroups(c *gin.Context) {
	groups, err := s.backend.GetGroups(c.Request.Context(), c.Param("subject"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not processed yet"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (s *Server) GetSummary(c *gin.Context) {
	summary, err := s.backend.GetSummary(c.Request.Context(), c.Param("subject"))
	if err != nil {
		log.Printf("Failed to build summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) GetPreparationStats(c *gin.Context) {
	stats, err := s.backend.GetPreparationStats(c.Request.Context(), c.Param("subject"))
	if err != nil {
		log.Printf("Failed to read preparation stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read preparation stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type batchRequest struct {
	Subject   string           `json:"subject"`
	Filenames []model.RecordID `json:"filenames"`
}

func (s *Server) BatchFileStatuses(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	snaps, err := s.backend.BatchFileStatuses(c.Request.Context(), req.Subject, req.Filenames)
	if err != nil {
		log.Printf("Failed to load statuses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statuses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "statuses": snaps})
}

func (s *Server) BatchFileContent(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	snaps, err := s.backend.BatchFileContent(c.Request.Context(), req.Subject, req.Filenames)
	if err != nil {
		log.Printf("Failed to load records: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mcq_data": snaps})
}

type submitGroupRequest struct {
	Subject      string           `json:"subject"`
	GroupID      int              `json:"group_id"`
	CheckedFiles []model.RecordID `json:"checked_files"`
}

func (s *Server) SubmitGroup(c *gin.Context) {
	var req submitGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	deltas, err := s.backend.SubmitGroup(c.Request.Context(), req.Subject, req.GroupID, req.CheckedFiles)
	if err != nil {
		log.Printf("Failed to submit group %d: %v", req.GroupID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"saved_count":            deltas.SavedCount,
		"removed_count":          deltas.RemovedCount,
		"moved_to_removed":       deltas.MovedToRemoved,
		"unchecked_from_saved":   deltas.UncheckedFromSaved,
		"newly_added_to_saved":   deltas.NewlyAddedToSaved,
		"newly_added_to_removed": deltas.NewlyAddedToRemoved,
	})
}

type autoSelectRequest struct {
	Subject string           `json:"subject"`
	Files   []model.RecordID `json:"files"`
}

func (s *Server) AutoSelectBest(c *gin.Context) {
	var req autoSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Files) == 0 {
		c.JSON(http.StatusOK, gin.H{"best_file": nil})
		return
	}

	snaps, err := s.backend.BatchFileStatuses(c.Request.Context(), req.Subject, req.Files)
	if err != nil {
		log.Printf("Failed to load statuses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statuses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"best_file": review.BestRecord(req.Files, snaps)})
}

func (s *Server) TrackRemoved(c *gin.Context) {
	removed, err := s.backend.TrackRemoved(c.Request.Context(), c.Param("subject"))
	if err != nil {
		log.Printf("Failed to track removed files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track removed files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"removed_count": len(removed),
		"removed_files": removed,
	})
}

func (s *Server) ClearSession(c *gin.Context) {
	result, err := s.backend.ClearSession(c.Request.Context(), c.Param("subject"))
	if err != nil {
		log.Printf("Failed to clear session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "final_deleted": result.FinalDeleted})
}
