// File: cmd/wscat/main.go
// wscat is a line-oriented WebSocket client: stdin lines are sent as
// messages, received messages are printed to stdout.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/client"
	"github.com/momentics/hioload-wsclient/protocol"
)

var (
	flagHeaders      []string
	flagSubprotocols []string
	flagBinary       bool
	flagTimeout      time.Duration
	flagVerbose      bool
)

func main() {
	root := &cobra.Command{
		Use:   "wscat URL",
		Short: "Interactive WebSocket client",
		Long:  "Connects to a ws:// or wss:// endpoint, sends stdin lines as messages and prints received messages.",
		Args:  cobra.ExactArgs(1),
		RunE:  run,

		SilenceUsage: true,
	}
	root.Flags().StringArrayVarP(&flagHeaders, "header", "H", nil, "extra request header, 'Name: value'")
	root.Flags().StringSliceVarP(&flagSubprotocols, "subprotocol", "s", nil, "subprotocol to offer")
	root.Flags().BoolVar(&flagBinary, "binary", false, "send stdin lines as binary messages")
	root.Flags().DurationVar(&flagTimeout, "handshake-timeout", 10*time.Second, "handshake timeout")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	header := http.Header{}
	for _, h := range flagHeaders {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("malformed header %q, want 'Name: value'", h)
		}
		header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := client.Dialer{Config: &client.Config{
		HandshakeTimeout: flagTimeout,
		Header:           header,
		Subprotocols:     flagSubprotocols,
		Logger:           log,
		ControlHandler: func(ev *protocol.ControlEvent) {
			if ev.Opcode == protocol.OpcodeClose {
				log.Info("peer close", "code", uint16(ev.Close.Code), "reason", ev.Close.Reason)
			}
		},
	}}
	conn, err := d.Dial(ctx, args[0])
	if err != nil {
		return err
	}
	log.Info("connected", "url", args[0], "subprotocol", conn.Subprotocol())

	w, r, err := conn.Split()
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		conn.Shutdown()
	}()

	go func() {
		for {
			msg, err := r.Next()
			if err != nil {
				if !api.IsClosedError(err) {
					log.Error("connection ended", "err", err)
				}
				stop()
				return
			}
			if msg.Kind == protocol.MessageText {
				fmt.Println(msg.Text())
			} else {
				fmt.Println(hex.EncodeToString(msg.Data))
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var serr error
		if flagBinary {
			serr = w.SendBinary(scanner.Bytes())
		} else {
			serr = w.SendText(scanner.Text())
		}
		if serr != nil {
			if api.IsClosedError(serr) {
				break
			}
			return serr
		}
	}

	_ = w.Close(protocol.CloseInfo{Code: protocol.CloseNormalClosure})
	<-conn.Done()
	return nil
}
