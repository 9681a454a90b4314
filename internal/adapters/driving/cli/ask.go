package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

var (
	askLanguage string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the university",
	Long: `Answers a question from the scraped IZU web corpus.

With a question argument, answers once and exits. Without one, and when
standard input is a terminal, starts an interactive session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askLanguage, "language", "l", "tr", "answer language (tr or en)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		sys, err := buildSystem()
		if err != nil {
			return err
		}
		defer sys.close()
		chatService = sys.pipeline
	}

	if len(args) == 1 {
		return askOnce(cmd, args[0], "")
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no question given and standard input is not a terminal")
	}
	return askInteractive(cmd)
}

// askOnce answers a single question.
func askOnce(cmd *cobra.Command, question, conversationID string) error {
	answer, err := chatService.Ask(context.Background(), domain.ChatRequest{
		Message:        question,
		Language:       domain.Language(askLanguage),
		ConversationID: conversationID,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Title, src.Score)
			if src.URL != "" {
				cmd.Printf("      %s\n", src.URL)
			}
		}
	}
	return nil
}

// askInteractive runs a read-ask-print loop until EOF or an exit word.
// The conversation ID from the first answer is carried across turns.
func askInteractive(cmd *cobra.Command) error {
	cmd.Println("izuchat interactive session. Type 'exit' to quit.")
	cmd.Println()

	var conversationID string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := chatService.Ask(context.Background(), domain.ChatRequest{
			Message:        question,
			Language:       domain.Language(askLanguage),
			ConversationID: conversationID,
		})
		if err != nil {
			cmd.PrintErrf("error: %v\n", err)
			continue
		}
		conversationID = answer.ConversationID

		cmd.Println()
		cmd.Println(answer.Answer)
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Title, src.Score)
		}
		cmd.Println()
	}
}
