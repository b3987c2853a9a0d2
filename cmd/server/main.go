/*
Command server runs the TidyHive booking engine behind an HTTP API.

It wires the SQLite store into the API handler, mounts the router from
api/server.go, and serves until SIGINT or SIGTERM. Shutdown drains
in-flight requests for up to 30 seconds before closing the database.

All configuration is via flags; there are no environment variables:

	-port    listen port (default 8080)
	-db      SQLite database path (default bookings.db);
	         pass ":memory:" to run without a file

	./server -db=./data/bookings.db -port=3000
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tidyhive/booking-engine/api"
	"github.com/tidyhive/booking-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "listen port")
	dbPath := flag.String("db", "bookings.db", "SQLite database path (\":memory:\" for in-memory)")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("opening database %s: %v", *dbPath, err)
	}
	defer store.Close()

	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("booking engine listening on http://localhost:%d/api (db=%s)", *port, *dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down, draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}

	log.Println("stopped")
}
