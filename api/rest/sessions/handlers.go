package sessions

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/canvas"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/publisher"
	"codeberg.org/notecanvas/server/internal/sessions"
)

// loads the session named in the path, writing the error response when it is missing
func loadSession(c *gin.Context, sessionMgr *sessions.Manager) (*sessions.Session, bool) {
	sessionID := c.Param("session_id")

	session, err := sessionMgr.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if stderrors.Is(err, sessions.ErrSessionNotFound) || stderrors.Is(err, sessions.ErrSessionExpired) {
			errors.SessionNotFound(c)
			return nil, false
		}

		errors.InternalError(c, "failed to load session", err)
		return nil, false
	}

	sessionMgr.Touch(session.ID)

	return session, true
}

// CreateSessionHandler godoc
// @Summary Create a canvas session
// @Description Starts a session holding the initial AgentState
// @Tags sessions
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /api/v1/sessions [post]
func CreateSessionHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionMgr.CreateSession()
		snap := session.Store.Snapshot()

		c.JSON(http.StatusCreated, SessionResponse{
			SessionID: session.ID,
			Version:   snap.Version,
			State:     snap.State,
			ExpiresAt: session.ExpiresAt(),
		})
	}
}

// DeleteSessionHandler godoc
// @Summary End a canvas session
// @Tags sessions
// @Param session_id path string true "Session ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/sessions/{session_id} [delete]
func DeleteSessionHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, sessionMgr)
		if !ok {
			return
		}

		sessionMgr.DeleteSession(c.Request.Context(), session.ID)

		c.Status(http.StatusNoContent)
	}
}

// GetStateHandler godoc
// @Summary Read the current state snapshot
// @Tags sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} StateResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/sessions/{session_id}/state [get]
func GetStateHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, sessionMgr)
		if !ok {
			return
		}

		snap := session.Store.Snapshot()

		c.JSON(http.StatusOK, StateResponse{Version: snap.Version, State: snap.State})
	}
}

// ReplaceStateHandler godoc
// @Summary Replace the whole state
// @Description Writes a complete AgentState. There is no merge: the last write wins.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body ReplaceStateRequest true "New state"
// @Success 200 {object} StateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/sessions/{session_id}/state [put]
func ReplaceStateHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, sessionMgr)
		if !ok {
			return
		}

		var req ReplaceStateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if current := session.Store.Version(); req.BaseVersion != 0 && req.BaseVersion < current {
			logger.Debug("state replace from stale base",
				"session_id", session.ID,
				"base_version", req.BaseVersion,
				"current_version", current,
			)
		}

		snap := session.Store.Replace(*req.State)

		c.JSON(http.StatusOK, StateResponse{Version: snap.Version, State: snap.State})
	}
}

// NoteHTMLHandler godoc
// @Summary Export the note as HTML
// @Tags sessions
// @Produce html
// @Param session_id path string true "Session ID"
// @Success 200 {string} string
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/sessions/{session_id}/note.html [get]
func NoteHTMLHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, sessionMgr)
		if !ok {
			return
		}

		page, err := publisher.Render(session.Store.State())
		if err != nil {
			if stderrors.Is(err, publisher.ErrEmptyNote) {
				errors.NotFound(c, "note")
				return
			}

			errors.InternalError(c, "failed to render note", err)
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}

// ListActionsHandler godoc
// @Summary List pending action requests
// @Description Pending agent proposals with the materials they would affect
// @Tags sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} ActionsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/sessions/{session_id}/actions [get]
func ListActionsHandler(sessionMgr *sessions.Manager, actionBridge *bridge.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, sessionMgr)
		if !ok {
			return
		}

		current := session.Store.State()
		pending := actionBridge.Pending(session.ID)
		views := make([]ActionView, 0, len(pending))

		for _, req := range pending {
			view := ActionView{
				ID:        req.ID,
				Name:      req.Name,
				Args:      req.Args,
				IssuedAt:  req.IssuedAt,
				Available: true,
			}

			if req.Name == bridge.ActionDeleteReferenceMaterials {
				if confirmation, err := canvas.BuildConfirmation(current, req, true); err == nil {
					view.Materials = confirmation.Materials
				}
			}

			views = append(views, view)
		}

		c.JSON(http.StatusOK, ActionsResponse{Actions: views})
	}
}

// DecideActionHandler godoc
// @Summary Answer a pending action request
// @Description Records the one YES/NO decision a request accepts. The state is not changed here.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param action_id path string true "Action request ID"
// @Param request body DecisionRequest true "Decision"
// @Success 200 {object} DecisionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/sessions/{session_id}/actions/{action_id} [post]
func DecideActionHandler(sessionMgr *sessions.Manager, actionBridge *bridge.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, sessionMgr)
		if !ok {
			return
		}

		var req DecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		decision, err := bridge.ParseDecision(req.Decision)
		if err != nil {
			errors.BadRequest(c, "decision must be YES or NO", nil)
			return
		}

		actionID := c.Param("action_id")

		action, _, exists := actionBridge.Get(actionID)
		if !exists || action.SessionID != session.ID {
			errors.ActionNotFound(c)
			return
		}

		if err := actionBridge.Respond(actionID, decision); err != nil {
			switch {
			case stderrors.Is(err, bridge.ErrAlreadyDecided), stderrors.Is(err, bridge.ErrRequestClosed):
				errors.Conflict(c, "action request is no longer available")
			case stderrors.Is(err, bridge.ErrUnknownRequest):
				errors.ActionNotFound(c)
			default:
				errors.InternalError(c, "failed to record decision", err)
			}

			return
		}

		logger.Info("action decided",
			"session_id", session.ID,
			"request_id", actionID,
			"decision", decision,
		)

		c.JSON(http.StatusOK, DecisionResponse{ID: actionID, Decision: string(decision)})
	}
}
