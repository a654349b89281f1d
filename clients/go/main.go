// uxtriage CLI - command line client for the uxtriage assistant API
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/uxtriage/uxtriage/clients/go/uxtriage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := uxtriage.NewClient(os.Getenv("UXTRIAGE_URL"))
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "find":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: uxtriage find <query> [limit]")
			os.Exit(1)
		}
		limit := 5
		if len(os.Args) > 3 {
			limit, _ = strconv.Atoi(os.Args[3])
		}
		resp, err := client.Find(os.Args[2], limit)
		exitOnError(err)
		for _, issue := range resp.Results {
			fmt.Printf("  [%s / %s] %s\n", issue.Product, issue.Screen, issue.Symptom)
			fmt.Printf("    cause: %s\n", issue.RootCause)
			fmt.Printf("    fix:   %s\n", issue.Recommendation)
		}
		fmt.Printf("%d result(s)\n", resp.Total)

	case "ask":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: uxtriage ask <message> [conversation-id]")
			os.Exit(1)
		}
		conversationID := ""
		if len(os.Args) > 3 {
			conversationID = os.Args[3]
		}
		resp, err := client.Chat(conversationID, os.Args[2])
		exitOnError(err)
		fmt.Println(resp.Answer)
		fmt.Fprintf(os.Stderr, "\nconversation: %s\n", resp.ConversationID)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `uxtriage - UX troubleshooting assistant client

Usage:
  uxtriage health                       Check server health
  uxtriage find <query> [limit]         Search the issue database
  uxtriage ask <message> [conv-id]      Ask the assistant

Environment:
  UXTRIAGE_URL   Server base URL (default http://localhost:8080)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
