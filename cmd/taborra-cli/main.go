// taborra-cli chats with the assistant from a terminal. Each stdin line is
// handled as one inbound WhatsApp message and the replies are printed to
// stdout instead of being sent.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/PabloGalante/taborra-agent/internal/app/conversation"
	"github.com/PabloGalante/taborra-agent/internal/bootstrap"
	"github.com/PabloGalante/taborra-agent/internal/config"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
	"github.com/PabloGalante/taborra-agent/internal/textutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var phone, name string
	var level int

	flagSet := pflag.NewFlagSet("taborra-cli", pflag.ContinueOnError)
	flagSet.StringVar(&phone, "phone", "5491100000000", "sender phone number")
	flagSet.StringVar(&name, "name", "Usuario", "sender display name")
	flagSet.IntVar(&level, "level", 0, "force the sender access level (1 general, 2 customer, 3 vip)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(os.Stderr, "usage: taborra-cli [flags]")
		flagSet.PrintDefaults()
		return nil
	}
	if level != 0 && (level < int(domain.LevelGeneral) || level > int(domain.LevelVIP)) {
		return fmt.Errorf("--level must be between %d and %d", domain.LevelGeneral, domain.LevelVIP)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	observability.SetLevel(cfg.LogLevel)

	ctx := context.Background()
	app, err := bootstrap.Build(ctx, cfg, &consoleDelivery{out: os.Stdout})
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer app.Close()

	phone = textutil.NormalizePhone(phone)
	if level != 0 {
		if err := ensureLevel(ctx, app.Store, phone, name, domain.AccessLevel(level)); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "chatting as %s (%s), one message per line, Ctrl-D to quit\n", name, phone)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		res, err := app.Conversation.HandleInbound(ctx, conversation.InboundMessage{
			MessageID: uuid.NewString(),
			Phone:     phone,
			Name:      name,
			Text:      text,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		observability.Logger().Debug("turn handled",
			"route", res.Route,
			"conversation_id", res.ConversationID,
			"session_active", res.Session.Active(),
		)
	}
	return scanner.Err()
}

func ensureLevel(ctx context.Context, store domain.Store, phone, name string, level domain.AccessLevel) error {
	_, err := store.GetUserByPhone(ctx, phone)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
		u := &domain.User{
			FirstName:   first,
			LastName:    strings.TrimSpace(last),
			Phone:       phone,
			AccessLevel: level,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.RegisterUser(ctx, u); err != nil {
			return fmt.Errorf("register user: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
	if err := store.UpdateAccessLevel(ctx, phone, level); err != nil {
		return fmt.Errorf("update access level: %w", err)
	}
	return nil
}

// consoleDelivery prints outbound messages instead of sending them.
type consoleDelivery struct {
	out io.Writer
}

func (d *consoleDelivery) SendText(_ context.Context, _ string, text string) error {
	_, err := fmt.Fprintf(d.out, "taborra> %s\n", text)
	return err
}

func (d *consoleDelivery) SendImage(_ context.Context, _ string, imageURL, caption string) error {
	_, err := fmt.Fprintf(d.out, "taborra> [imagen] %s %s\n", imageURL, caption)
	return err
}

func (d *consoleDelivery) SendLongText(ctx context.Context, to, text string) error {
	return d.SendText(ctx, to, text)
}
