package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/quizkernel/pkg/models"
)

// createSessionHandler handles POST /api/v1/sessions.
func (s *Server) createSessionHandler(c *echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	condition := models.ConditionAdaptive
	if req.Condition != "" {
		condition = models.Condition(req.Condition)
	}

	session, err := s.engine.CreateSession(c.Request().Context(), req.UserID, req.QuizID, condition)
	if err != nil {
		return mapKernelError(err)
	}
	sessionsCreated.Inc()

	return c.JSON(http.StatusCreated, &SessionResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		QuizID:    session.QuizID,
		Condition: string(session.Condition),
		Theta:     session.Theta,
		ThetaSd:   session.ThetaSd,
	})
}

// nextQuestionHandler handles GET /api/v1/sessions/:id/next-question.
func (s *Server) nextQuestionHandler(c *echo.Context) error {
	sessionID := c.Param("id")
	outcome, err := s.engine.SelectNext(c.Request().Context(), sessionID)
	if err != nil {
		return mapKernelError(err)
	}
	if outcome.Completed {
		sessionsCompleted.Inc()
	}
	return c.JSON(http.StatusOK, newNextQuestionResponse(outcome))
}

// submitAnswerHandler handles POST /api/v1/sessions/:id/answer.
func (s *Server) submitAnswerHandler(c *echo.Context) error {
	sessionID := c.Param("id")

	var req SubmitAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.engine.SubmitAnswer(c.Request().Context(), sessionID, req.QuestionID, req.SelectedAnswer, req.ResponseTimeMs)
	if err != nil {
		return mapKernelError(err)
	}

	answersSubmitted.WithLabelValues(strconv.FormatBool(result.IsCorrect)).Inc()

	return c.JSON(http.StatusOK, newAnswerResponse(result))
}

// sessionSummaryHandler handles GET /api/v1/sessions/:id/summary.
func (s *Server) sessionSummaryHandler(c *echo.Context) error {
	sessionID := c.Param("id")

	summary, weakest, err := s.engine.Summary(c.Request().Context(), sessionID)
	if err != nil {
		return mapKernelError(err)
	}

	resp := &SummaryResponse{
		Total:           summary.Total,
		Mastered:        summary.Mastered,
		InProgress:      summary.InProgress,
		NotStarted:      summary.NotStarted,
		OverallProgress: summary.OverallProgress,
	}
	if weakest != nil {
		resp.WeakestKC = &KCStateResponse{
			KC:         weakest.KCID,
			PLearned:   weakest.PLearned,
			Attempts:   weakest.Attempts,
			Correct:    weakest.Correct,
			IsMastered: weakest.IsMastered,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// sessionInteractionsHandler handles GET /api/v1/sessions/:id/interactions.
func (s *Server) sessionInteractionsHandler(c *echo.Context) error {
	sessionID := c.Param("id")

	_, interactions, err := s.repo.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		return mapKernelError(wrapRepoNotFound(err))
	}

	out := make([]InteractionResponse, 0, len(interactions))
	for _, ia := range interactions {
		out = append(out, InteractionResponse{
			ID:             ia.ID,
			QuestionID:     ia.QuestionID,
			SelectedAnswer: ia.SelectedAnswer,
			IsCorrect:      ia.IsCorrect,
			ResponseTimeMs: ia.ResponseTimeMs,
			ThetaBefore:    ia.ThetaBefore,
			ThetaAfter:     ia.ThetaAfter,
			PLearnedBefore: ia.PLearnedBefore,
			PLearnedAfter:  ia.PLearnedAfter,
			CreatedAt:      ia.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(http.StatusOK, out)
}
