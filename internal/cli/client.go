package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"flashquiz/internal/domain"
	"flashquiz/internal/protocol"
)

// NewClientCmd builds a minimal terminal client for playing against a
// running server.
func NewClientCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Play a quiz from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:12345", "server address")
	return cmd
}

// serverFrame is a loose decoding of any server message.
type serverFrame struct {
	Type          string                    `json:"type"`
	Message       string                    `json:"message"`
	Username      string                    `json:"username"`
	Topics        []string                  `json:"topics"`
	Topic         string                    `json:"topic"`
	Prompt        string                    `json:"prompt"`
	Choices       []string                  `json:"choices"`
	Number        int                       `json:"number"`
	Total         int                       `json:"total"`
	Correct       bool                      `json:"correct"`
	CorrectAnswer string                    `json:"correct_answer"`
	Score         int                       `json:"score"`
	Percentage    float64                   `json:"percentage"`
	Entries       []domain.LeaderboardEntry `json:"entries"`
}

func runClient(ctx context.Context, addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "connect failed")
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", addr)

	stdin := bufio.NewScanner(os.Stdin)
	server := bufio.NewScanner(conn)
	server.Buffer(make([]byte, 0, 4096), 64*1024)

	send := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = conn.Write(append(data, '\n'))
		return errors.Wrap(err, "send failed")
	}

	askRegister := func() error {
		name, ok := promptLine(stdin, "username")
		if !ok {
			return errors.New("stdin closed")
		}
		return send(protocol.ClientMessage{Type: protocol.TypeRegister, Username: name})
	}
	askTopic := func() error {
		topic, ok := promptLine(stdin, "topic")
		if !ok {
			return errors.New("stdin closed")
		}
		return send(protocol.ClientMessage{Type: protocol.TypeTopic, Topic: topic})
	}

	// reprompt is replayed when the server rejects the previous input, e.g.
	// a taken username or an unknown topic.
	reprompt := askRegister
	if err := askRegister(); err != nil {
		return err
	}

	for server.Scan() {
		line := bytes.TrimSpace(server.Bytes())
		if len(line) == 0 {
			continue
		}
		var frame serverFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			fmt.Println("received invalid message from server")
			continue
		}

		switch frame.Type {
		case protocol.TypeRegistered:
			fmt.Printf("welcome %s! topics: %s\n", frame.Username, strings.Join(frame.Topics, ", "))
			reprompt = askTopic
			if err := askTopic(); err != nil {
				return err
			}
		case protocol.TypeTopics:
			fmt.Printf("topics: %s\n", strings.Join(frame.Topics, ", "))
			reprompt = askTopic
			if err := askTopic(); err != nil {
				return err
			}
		case protocol.TypeQuestion:
			fmt.Printf("\nquestion %d/%d: %s\n", frame.Number, frame.Total, frame.Prompt)
			for i, choice := range frame.Choices {
				fmt.Printf("  %d) %s\n", i+1, choice)
			}
			ask := func() error {
				answer, ok := promptLine(stdin, "answer")
				if !ok {
					return errors.New("stdin closed")
				}
				return send(protocol.ClientMessage{Type: protocol.TypeAnswer, Choice: parseChoice(answer, len(frame.Choices))})
			}
			reprompt = ask
			if err := ask(); err != nil {
				return err
			}
		case protocol.TypeResult:
			if frame.Correct {
				fmt.Printf("correct! score: %d\n", frame.Score)
			} else {
				fmt.Printf("wrong, the answer was %q. score: %d\n", frame.CorrectAnswer, frame.Score)
			}
		case protocol.TypeRoundComplete:
			fmt.Printf("\nround complete (%s): %d/%d (%.1f%%)\n", frame.Topic, frame.Score, frame.Total, frame.Percentage)
			ask := func() error {
				action, ok := promptLine(stdin, "[p]lay again, new [u]sername, [q]uit")
				if !ok {
					return errors.New("stdin closed")
				}
				switch strings.ToLower(action) {
				case "p":
					return send(protocol.ClientMessage{Type: protocol.TypeNextRound})
				case "u":
					reprompt = askRegister
					return askRegister()
				default:
					if err := send(protocol.ClientMessage{Type: protocol.TypeLogout}); err != nil {
						return err
					}
					return errQuit
				}
			}
			reprompt = ask
			if err := ask(); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		case protocol.TypeLeaderboard:
			fmt.Println("leaderboard:")
			for i, entry := range frame.Entries {
				fmt.Printf("  %d. %-20s %d\n", i+1, entry.Username, entry.Score)
			}
		case protocol.TypeError:
			fmt.Printf("server: %s\n", frame.Message)
			if reprompt != nil {
				if err := reprompt(); err != nil {
					return err
				}
			}
		}
	}
	fmt.Println("disconnected")
	return server.Err()
}

var errQuit = errors.New("quit")

func promptLine(stdin *bufio.Scanner, label string) (string, bool) {
	fmt.Printf("%s> ", label)
	if !stdin.Scan() {
		return "", false
	}
	return strings.TrimSpace(stdin.Text()), true
}

// parseChoice turns user input into an answer payload: a number 1..n selects
// that choice, anything else is submitted as answer text.
func parseChoice(input string, n int) *protocol.Choice {
	if number, err := strconv.Atoi(input); err == nil && number >= 1 && number <= n {
		return &protocol.Choice{ByIndex: true, Index: number - 1}
	}
	return &protocol.Choice{Text: input}
}
