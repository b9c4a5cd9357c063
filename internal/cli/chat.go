package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

var chatFlags struct {
	addr string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Connect to a chat server from the terminal",
	Long: `Connect to a chat server and exchange messages interactively.

Lines starting with / are commands (/create, /join, /exit, /w, /list, /who);
everything else is broadcast to your current room.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(parent context.Context) error {
	baseCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, chatFlags.addr, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", chatFlags.addr, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	color.Green.Println("Connected to", chatFlags.addr)

	go func() {
		defer cancel()
		for {
			typ, data, readErr := conn.Read(ctx)
			if readErr != nil {
				if ctx.Err() == nil {
					color.Red.Println("Disconnected from server")
				}
				return
			}
			if typ == websocket.MessageText {
				fmt.Println(string(data))
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			if !strings.HasPrefix(line, "/") {
				// Erase the typed line; the server echo is the rendered copy.
				fmt.Print("\x1b[1A\x1b[2K")
			}
		}
	}
}

func init() {
	chatCmd.Flags().StringVar(&chatFlags.addr, "addr", "ws://localhost:3000/ws", "WebSocket address of the server")
	rootCmd.AddCommand(chatCmd)
}
