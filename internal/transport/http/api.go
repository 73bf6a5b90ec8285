package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// API exposes the quiz and auth use cases over JSON.
type API struct {
	service *app.QuizService
	auth    *app.AuthStore
}

func NewAPI(service *app.QuizService, auth *app.AuthStore) *API {
	return &API{service: service, auth: auth}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type setupRequest struct {
	Amount     int    `json:"amount"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type setupOptions struct {
	Amounts      []int               `json:"amounts"`
	Difficulties []domain.Difficulty `json:"difficulties"`
	Categories   []domain.Category   `json:"categories"`
}

// Register mounts the routes on r.
func (a *API) Register(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.POST("/register", a.register)
	auth.POST("/login", a.login)
	auth.POST("/logout", a.logout)
	auth.GET("/me", a.RequireAuth(), a.me)

	gated := r.Group("", a.RequireAuth())
	gated.GET("/categories", a.categories)
	gated.GET("/setup/options", a.setupOptions)
	gated.POST("/quiz", a.setup)
	gated.GET("/quiz", a.status)
	gated.DELETE("/quiz", a.reset)
	gated.POST("/quiz/start", a.start)
	gated.POST("/quiz/answer", a.answer)
	gated.POST("/quiz/end", a.end)
	gated.GET("/quiz/report", a.report)
}

// RequireAuth rejects requests while nobody is logged in.
func (a *API) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.auth.Current()
		if !ok {
			writeError(c, domain.ErrNotAuthenticated)
			c.Abort()
			return
		}
		c.Set("username", id.Username)
		c.Next()
	}
}

func (a *API) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.BindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	if err := a.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

func (a *API) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	ok, err := a.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		writeError(c, domain.ErrInvalidCredentials)
		return
	}
	id, _ := a.auth.Current()
	c.JSON(http.StatusOK, id)
}

func (a *API) logout(c *gin.Context) {
	if err := a.auth.Logout(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) me(c *gin.Context) {
	id, _ := a.auth.Current()
	c.JSON(http.StatusOK, id)
}

func (a *API) categories(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.Categories(c.Request.Context()))
}

func (a *API) setupOptions(c *gin.Context) {
	c.JSON(http.StatusOK, setupOptions{
		Amounts:      domain.SetupAmounts,
		Difficulties: domain.Difficulties,
		Categories:   a.service.Categories(c.Request.Context()),
	})
}

func (a *API) setup(c *gin.Context) {
	var req setupRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	snap, err := a.service.Setup(c.Request.Context(), domain.QuizSettings{
		Amount:     req.Amount,
		Category:   req.Category,
		Difficulty: domain.Difficulty(req.Difficulty),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshotView(snap))
}

func (a *API) status(c *gin.Context) {
	c.JSON(http.StatusOK, newQuizView(a.service.Status()))
}

func (a *API) start(c *gin.Context) {
	snap, err := a.service.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotView(snap))
}

func (a *API) answer(c *gin.Context) {
	var req answerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	snap, err := a.service.Answer(c.Request.Context(), req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotView(snap))
}

func (a *API) end(c *gin.Context) {
	snap, err := a.service.End(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotView(snap))
}

func (a *API) reset(c *gin.Context) {
	snap, err := a.service.Reset(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotView(snap))
}

func (a *API) report(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.Report())
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrNoQuestions),
		errors.Is(err, domain.ErrQuizNotActive),
		errors.Is(err, domain.ErrQuizComplete),
		errors.Is(err, domain.ErrSetupSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
