package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/parleychat/parley/pkg/client"
)

// chatprobe drives a running server end to end: it creates a chat, lets the
// auto-trigger fire the first model turn, and prints the streamed deltas.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env file, using process environment: %v", err)
	}

	mode := flag.String("mode", "new", "probe mode: new (create + auto-trigger), resume (continue a chat), models, chats")
	baseURL := flag.String("base", envOr("PARLEY_BASE_URL", "http://localhost:8080"), "server base URL")
	modelID := flag.String("model", "", "model id (new mode; defaults to the first catalog entry)")
	prompt := flag.String("prompt", "", "user prompt text")
	chatID := flag.String("chat", "", "chat id (resume mode)")
	timeout := flag.Duration("timeout", 90*time.Second, "request timeout")

	flag.Parse()

	c := client.NewClient(*baseURL)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "new":
		runNew(ctx, c, *modelID, *prompt)
	case "resume":
		runResume(ctx, c, *chatID, *prompt)
	case "models":
		runModels(ctx, c)
	case "chats":
		runChats(ctx, c)
	default:
		flag.Usage()
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runNew(ctx context.Context, c *client.Client, modelID, prompt string) {
	if strings.TrimSpace(prompt) == "" {
		log.Fatal("new mode needs -prompt")
	}

	if modelID == "" {
		models, err := c.ListModels(ctx)
		if err != nil {
			log.Fatalf("list models failed: %v", err)
		}
		if len(models) == 0 {
			log.Fatal("server has no models configured")
		}
		modelID = models[0].ID
		log.Printf("no -model given, using %s", modelID)
	}

	created, err := c.CreateChat(ctx, prompt, modelID)
	if err != nil {
		log.Fatalf("create chat failed: %v", err)
	}
	log.Printf("created chat %s (%q)", created.ID, created.Title)

	view, err := c.GetChat(ctx, created.ID)
	if err != nil {
		log.Fatalf("load chat failed: %v", err)
	}

	fired, err := c.AutoTriggerTurn(ctx, view, true, printEvent)
	if err != nil {
		log.Fatalf("turn failed: %v", err)
	}
	if !fired {
		log.Fatal("auto-trigger guards refused to fire; is the transcript in the expected state?")
	}
	fmt.Println()
	log.Printf("turn complete for chat %s", created.ID)
}

func runResume(ctx context.Context, c *client.Client, chatID, prompt string) {
	if chatID == "" {
		log.Fatal("resume mode needs -chat")
	}
	if strings.TrimSpace(prompt) == "" {
		log.Fatal("resume mode needs -prompt")
	}

	view, err := c.GetChat(ctx, chatID)
	if err != nil {
		log.Fatalf("load chat failed: %v", err)
	}
	log.Printf("resuming chat %s with %d stored messages", chatID, len(view.Messages))

	req := client.TurnRequest{
		ChatID:  chatID,
		ModelID: view.Chat.ModelID,
		Messages: []client.StructuredMessage{{
			Role:  "user",
			Parts: []client.Segment{{Type: "text", Text: prompt}},
		}},
	}
	if err := c.StreamTurn(ctx, req, printEvent); err != nil {
		log.Fatalf("turn failed: %v", err)
	}
	fmt.Println()
	log.Printf("turn complete for chat %s", chatID)
}

func runModels(ctx context.Context, c *client.Client) {
	models, err := c.ListModels(ctx)
	if err != nil {
		log.Fatalf("list models failed: %v", err)
	}
	for _, m := range models {
		fmt.Printf("%s\t%s\n", m.ID, m.Name)
	}
}

func runChats(ctx context.Context, c *client.Client) {
	chats, err := c.ListChats(ctx)
	if err != nil {
		log.Fatalf("list chats failed: %v", err)
	}
	for _, ch := range chats {
		fmt.Printf("%s\t%s\t%s\n", ch.ID, ch.ModelID, ch.Title)
	}
}

func printEvent(e client.Event) error {
	switch e.Event {
	case "start":
		log.Printf("stream started for chat %s", e.ChatID)
	case "text-delta":
		fmt.Print(e.Text)
	case "reasoning-delta":
		fmt.Fprint(os.Stderr, e.Text)
	case "finish":
		// Completion is logged by the caller once the stream closes.
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
