package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jeefxM/STB-World/server/auth"
)

func main() {
	dataDir := os.Getenv("STB_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	a, err := auth.NewAuth(dataDir)
	if err != nil {
		log.Fatal("auth init:", err)
	}
	store, err := NewStore(filepath.Join(dataDir, "store.json"))
	if err != nil {
		log.Fatal("store init:", err)
	}

	srvAddr := os.Getenv("STB_LISTEN")
	if srvAddr == "" {
		srvAddr = ":8080"
	}
	s := &http.Server{
		Addr:         srvAddr,
		Handler:      NewServer(store, a).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Println("server listening on", srvAddr)
	log.Fatal(s.ListenAndServe())
}
