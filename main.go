package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mingle "github.com/mingleapp/mingle/app"
)

const publicDir = "./public"

func main() {
	ctx, _ := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	// the frontend build is optional; without it the server is API-only
	var staticFS *mingle.StaticFS
	if _, err := os.Stat(filepath.Join(publicDir, "index.html")); err == nil {
		staticFS, err = mingle.NewStaticFS(os.DirFS(publicDir), "index.html", map[string]string{
			"index.html": "no-cache",
			"assets/*":   "public, max-age=31536000, immutable",
		})
		if err != nil {
			log.Fatalf("static fs: %v", err)
		}
	}

	app := mingle.New(ctx, nil, staticFS)
	app.Start()
}
