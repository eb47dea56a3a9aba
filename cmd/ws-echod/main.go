// File: cmd/ws-echod/main.go
// ws-echod is a small echo server used to exercise the client
// locally: every received message is sent straight back.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	// Local test tool; origin checks would only get in the way.
	CheckOrigin: func(*http.Request) bool { return true },
}

func main() {
	addr := flag.String("addr", "localhost:9001", "listen address")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", echo(log))
	r.Get("/echo", echo(log))

	log.Info("listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func echo(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Warn("upgrade failed", "err", err)
			return
		}
		defer conn.Close()
		log.Info("client connected", "remote", conn.RemoteAddr())

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn("read failed", "err", err)
				}
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				log.Warn("write failed", "err", err)
				return
			}
		}
	}
}
