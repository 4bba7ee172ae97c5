package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/fwojciec/siterag"
)

// farewells end a chat session.
var farewells = map[string]bool{
	"quit":    true,
	"exit":    true,
	"bye":     true,
	"goodbye": true,
}

// Run executes the chat command.
func (c *ChatCmd) Run(deps *Dependencies) error {
	var (
		prompt = color.New(color.FgCyan, color.Bold)
		bot    = color.New(color.FgGreen)
		dim    = color.New(color.Faint)
		warn   = color.New(color.FgYellow)
	)

	if err := deps.Client.Health(deps.Ctx); err != nil {
		warn.Fprintf(deps.Stderr, "Cannot reach the API at %s: %s\n", c.URL, siterag.ErrorMessage(err))
		fmt.Fprintln(deps.Stderr, "Hint: start it with 'siterag serve'")
		return err
	}

	fmt.Fprintf(deps.Stdout, "Connected to %s. Type 'quit' to exit.\n", c.URL)

	var history []string
	scanner := bufio.NewScanner(deps.Stdin)
	for {
		prompt.Fprint(deps.Stdout, "\nYou: ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if farewells[strings.ToLower(question)] {
			bot.Fprintln(deps.Stdout, "Goodbye!")
			return nil
		}
		if question == "" {
			dim.Fprintln(deps.Stdout, "Please type a question.")
			continue
		}

		answer, err := deps.Client.Ask(deps.Ctx, &siterag.AskRequest{Question: question, History: history})
		if err != nil {
			warn.Fprintf(deps.Stdout, "Error: %s\n", siterag.ErrorMessage(err))
			continue
		}
		history = answer.History

		bot.Fprintf(deps.Stdout, "Bot: %s\n", answer.Answer)
		if answer.ContextChunksFound > 0 {
			dim.Fprintf(deps.Stdout, "(%d context sources)\n", answer.ContextChunksFound)
		}
	}
	return scanner.Err()
}
