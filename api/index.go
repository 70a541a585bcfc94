package handler

import (
	"net/http"
	"sync"

	"github.com/autonomeet/autonomeet-api/pkg/app"
	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/autonomeet/autonomeet-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

var (
	once    sync.Once
	router  http.Handler
	initErr error
)

func setup() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}

	// Serverless instances have no long-lived sweeper; expired pending
	// bookings are still rejected at confirmation time.
	a, err := app.Build(cfg, logger.New(cfg))
	if err != nil {
		initErr = err
		return
	}
	router = a.Router
}

// Handler is the entry point for the Vercel Go runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"service misconfigured"}`))
		return
	}
	router.ServeHTTP(w, r)
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
