package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/huydq/ollachat/internal/streamclient"
)

// chatcli is a terminal front end for the /chat streaming endpoint. Each
// line typed becomes one exchange; the reply is printed as it streams.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "chat server base URL")
	model := flag.String("model", "", "model name (empty uses the server default)")
	sessionID := flag.String("session", "", "session id to attribute messages to")
	guestLimit := flag.Int("guest-limit", 0, "enable the guest gate with this many free sends")
	flag.Parse()

	client := streamclient.New(strings.TrimRight(*serverURL, "/")+"/chat", &http.Client{}, streamclient.Options{
		SessionID:  *sessionID,
		Model:      *model,
		GuestLimit: *guestLimit,
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
		},
		OnQuotaExceeded: func() {
			fmt.Fprintln(os.Stderr, "guest quota exhausted; please log in to continue")
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		client.Cancel()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Print("> ")
			continue
		}
		if text == "/quit" {
			return
		}

		if err := send(ctx, client, text); errors.Is(err, streamclient.ErrGuestQuotaExceeded) {
			return
		}
		fmt.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}

// send runs one exchange, echoing the assistant message as it grows.
func send(ctx context.Context, client *streamclient.Client, text string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- client.SendMessage(ctx, text) }()

	var printed int
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			printed = printDelta(client, printed)
			if printed > 0 && err == nil {
				fmt.Println()
			}
			return err
		case <-ticker.C:
			printed = printDelta(client, printed)
		}
	}
}

// printDelta prints any assistant content that appeared since the last call
// and returns the new high-water mark.
func printDelta(client *streamclient.Client, printed int) int {
	messages := client.Messages()
	n := len(messages)
	if n == 0 || messages[n-1].Role != "assistant" {
		return printed
	}
	content := messages[n-1].Content
	if len(content) > printed {
		fmt.Print(content[printed:])
		printed = len(content)
	}
	return printed
}
