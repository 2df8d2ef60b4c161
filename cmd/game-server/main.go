package main

import (
	"context"
	"net/http"
	"time"

	"bottle-spin/internal/config"
	"bottle-spin/internal/logging"
	"bottle-spin/internal/session"
	httptransport "bottle-spin/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st := session.NewStore()
	feed := session.NewFeed(st)
	st.StartJanitor(context.Background())

	r := httptransport.NewRouter(st, feed)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
