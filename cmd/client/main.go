package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Chat/pkg/client"
	"github.com/dkeye/Chat/pkg/protocol"
)

var errQuit = errors.New("quit")

func main() {
	url := pflag.String("url", client.DefaultConfig().URL, "chat server WebSocket URL")
	name := pflag.String("name", "", "display name")
	room := pflag.String("room", "General", "room to join")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if strings.TrimSpace(*name) == "" {
		log.Fatal().Msg("--name is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := client.DefaultConfig()
	cfg.URL = *url
	c := client.NewClient(cfg)
	register(c)

	if err := c.Connect(ctx); err != nil {
		log.Fatal().Err(err).Str("url", *url).Msg("connect")
	}
	defer c.Close()

	if err := c.Join(ctx, *name, *room); err != nil {
		log.Fatal().Err(err).Msg("join")
	}

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-c.Done():
			return errors.New("connection closed")
		case <-gctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				if err := handleLine(gctx, c, *room, line); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		log.Error().Err(err).Msg("client stopped")
		return
	}
	log.Info().Msg("bye")
}

func handleLine(ctx context.Context, c *client.Client, room, line string) error {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return nil
	case "/quit":
		_ = c.Leave(ctx, room)
		return errQuit
	case "/who":
		return c.WhoAmI(ctx)
	case "/ping":
		return c.Ping(ctx)
	}
	if err := c.Send(ctx, room, line); err != nil {
		return err
	}
	return c.Typing(ctx, room, false)
}

func register(c *client.Client) {
	c.OnHistory(func(entries []protocol.ChatEntry) {
		for _, e := range entries {
			fmt.Printf("[%s] %s: %s\n", stamp(e.TS), e.Username, e.Msg)
		}
	})
	c.OnMessage(func(e protocol.ChatEntry) {
		fmt.Printf("[%s] %s: %s\n", stamp(e.TS), e.Username, e.Msg)
	})
	c.OnStatus(func(s protocol.StatusPayload) {
		fmt.Printf("* %s\n", s.Msg)
	})
	c.OnUserList(func(names []string) {
		fmt.Printf("* online: %s\n", strings.Join(names, ", "))
	})
	c.OnTyping(func(t protocol.TypingNotice) {
		if t.Typing {
			fmt.Printf("* %s is typing...\n", t.Username)
		}
	})
	c.OnWhoAmI(func(w protocol.WhoAmIPayload) {
		fmt.Printf("* you are %q in %q\n", w.Username, w.Room)
	})
	c.OnPong(func() { fmt.Println("* pong") })
	c.OnError(func(err error) {
		log.Warn().Err(err).Msg("client error")
	})
}

func stamp(ms int64) string {
	if ms == 0 {
		return "--:--"
	}
	return time.UnixMilli(ms).Format("15:04")
}
