// Package main provides a terminal client for the chat service: it mirrors
// the session list, renders history, and runs chat turns.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/xiaot623/chatrelay/client"
	"github.com/xiaot623/chatrelay/domain"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8003", "chat service URL")
	userID := flag.String("user", "", "user identifier (generated when empty)")
	model := flag.String("model", "gpt-4o-mini", "model identifier")
	flag.Parse()

	if *userID == "" {
		*userID = uuid.New().String()
	}

	ctx := context.Background()
	c := client.NewClient(*serverURL)
	ctl := client.NewController(c, *userID, *model)

	if err := ctl.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cannot reach server: %v\n", err)
		os.Exit(1)
	}
	if ctl.Current() == "" {
		if _, err := ctl.NewSession(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create session: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("connected to %s as %s (model %s)\n", *serverURL, *userID, ctl.Model())
	fmt.Println("type a message, or /help for commands")
	printHistory(ctl.History())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, ctl, line); quit {
				return
			}
			continue
		}

		reply, err := ctl.Send(ctx, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("[%s] %s\n", ctl.Model(), reply)
	}
}

// runCommand handles one slash command and reports whether to exit.
func runCommand(ctx context.Context, ctl *client.Controller, line string) bool {
	parts := strings.SplitN(line, " ", 2)
	cmd := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/help":
		fmt.Println(`/new            create and switch to a new session
/sessions       list sessions
/switch N       switch to session number N
/rename TITLE   rename the active session
/delete [N]     delete the active session (or number N)
/model ID       select the model for new turns
/quit           exit`)

	case "/new":
		if _, err := ctl.NewSession(ctx); err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Println("started a new session")

	case "/sessions":
		for i, sess := range ctl.Sessions() {
			marker := " "
			if sess.ID == ctl.Current() {
				marker = "*"
			}
			fmt.Printf("%s %2d. %s (%s)\n", marker, i+1, sess.Title, sess.CreatedAt.Local().Format("Jan 2 15:04"))
		}

	case "/switch":
		sess, ok := sessionByNumber(ctl, arg)
		if !ok {
			fmt.Println("usage: /switch N")
			break
		}
		if err := ctl.Select(ctx, sess.ID); err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Printf("switched to %q\n", sess.Title)
		printHistory(ctl.History())

	case "/rename":
		if arg == "" {
			fmt.Println("usage: /rename TITLE")
			break
		}
		if err := ctl.Rename(ctx, arg); err != nil {
			fmt.Printf("error: %v\n", err)
		}

	case "/delete":
		id := ctl.Current()
		if arg != "" {
			sess, ok := sessionByNumber(ctl, arg)
			if !ok {
				fmt.Println("usage: /delete [N]")
				break
			}
			id = sess.ID
		}
		if id == "" {
			fmt.Println("no active session")
			break
		}
		if err := ctl.Delete(ctx, id); err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Println("session deleted")

	case "/model":
		if arg == "" {
			fmt.Printf("current model: %s\n", ctl.Model())
			break
		}
		ctl.SetModel(arg)
		fmt.Printf("model set to %s\n", arg)

	case "/quit", "/exit":
		return true

	default:
		fmt.Printf("unknown command %s (try /help)\n", cmd)
	}
	return false
}

func sessionByNumber(ctl *client.Controller, arg string) (domain.Session, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(ctl.Sessions()) {
		return domain.Session{}, false
	}
	return ctl.Sessions()[n-1], true
}

func printHistory(history []domain.Message) {
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleAssistant:
			fmt.Printf("[%s] %s\n", msg.Model, msg.Content)
		default:
			fmt.Printf("> %s\n", msg.Content)
		}
	}
}
