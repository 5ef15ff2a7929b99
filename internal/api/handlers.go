package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"execedge/internal/auth"
	"execedge/internal/engine"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) toggle(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, s.log, engine.ValidationError{Field: "body", Reason: err.Error()}, "invalid request")
		return
	}

	in := engine.ToggleInput{HabitID: req.HabitID, Note: req.Notes}
	if req.CompletionDate != nil {
		d, err := engine.ParseDate(*req.CompletionDate, s.svc.Today())
		if err != nil {
			HandleError(c, s.log, err, "invalid completion_date")
			return
		}
		in.Date = &d
	}

	res, err := s.svc.ToggleCompletion(c.Request.Context(), user.ID, in)
	if err != nil {
		HandleError(c, s.log, err, "toggle failed")
		return
	}
	HandleSuccess(c, toToggleResponse(res), nil)
}

func (s *Server) progress(c *gin.Context) {
	user := auth.CurrentUser(c)
	snap, err := s.svc.Progress(c.Request.Context(), user.ID)
	if err != nil {
		HandleError(c, s.log, err, "failed to load progress")
		return
	}
	HandleSuccess(c, toSnapshotView(*snap), nil)
}

func (s *Server) recompute(c *gin.Context) {
	user := auth.CurrentUser(c)
	res, err := s.svc.RecomputeSnapshot(c.Request.Context(), user.ID)
	if err != nil {
		HandleError(c, s.log, err, "recompute failed")
		return
	}
	earned := make([]string, 0, len(res.NewAchievements))
	for _, a := range res.NewAchievements {
		earned = append(earned, a.Definition.Title)
	}
	HandleSuccess(c, toSnapshotView(res.Snapshot), map[string]any{"achievements_earned": earned})
}

func (s *Server) listHabits(c *gin.Context) {
	user := auth.CurrentUser(c)
	list, err := s.svc.ListHabits(c.Request.Context(), user.ID)
	if err != nil {
		HandleError(c, s.log, err, "failed to list habits")
		return
	}
	out := make([]habitView, 0, len(list))
	for _, l := range list {
		v := habitView{
			ID:          l.Habit.ID,
			Title:       l.Habit.Title,
			Description: l.Habit.Description,
			Category:    l.Habit.Category,
			Points:      l.Habit.Points,
			TargetRoles: l.Habit.TargetRoles,
			Frequency:   l.Habit.Frequency,
			Subscribed:  l.Subscribed,
		}
		if l.Since != nil {
			v.Since = engine.FormatDay(*l.Since)
		}
		out = append(out, v)
	}
	HandleSuccess(c, out, map[string]any{"count": len(out)})
}

func (s *Server) subscribe(c *gin.Context) {
	user := auth.CurrentUser(c)
	if err := s.svc.Subscribe(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		HandleError(c, s.log, err, "subscribe failed")
		return
	}
	HandleSuccess(c, gin.H{"habit_id": c.Param("id"), "subscribed": true}, nil)
}

func (s *Server) unsubscribe(c *gin.Context) {
	user := auth.CurrentUser(c)
	if err := s.svc.Unsubscribe(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		HandleError(c, s.log, err, "unsubscribe failed")
		return
	}
	HandleSuccess(c, gin.H{"habit_id": c.Param("id"), "subscribed": false}, nil)
}

func (s *Server) achievements(c *gin.Context) {
	user := auth.CurrentUser(c)
	dash, err := s.svc.Dashboard(c.Request.Context(), user.ID)
	if err != nil {
		HandleError(c, s.log, err, "failed to evaluate achievements")
		return
	}
	out := make([]achievementView, 0, len(dash.Achievements))
	for _, a := range dash.Achievements {
		out = append(out, toAchievementView(a))
	}
	HandleSuccess(c, out, map[string]any{"unlocked": dash.UnlockedCount(), "total": len(out)})
}

func (s *Server) challenges(c *gin.Context) {
	user := auth.CurrentUser(c)
	dash, err := s.svc.Dashboard(c.Request.Context(), user.ID)
	if err != nil {
		HandleError(c, s.log, err, "failed to evaluate challenges")
		return
	}
	HandleSuccess(c, toChallengeViews(dash.Challenges), map[string]any{"as_of": dash.Today.Format(time.DateOnly)})
}
