// Command client is a terminal harness for the session flows: it keeps its
// credentials in a local file and walks the same routing logic the mobile
// app runs at startup.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pay-aware/pay_aware/internal/client/api"
	"github.com/pay-aware/pay_aware/internal/client/credentials"
	"github.com/pay-aware/pay_aware/internal/client/deeplink"
	"github.com/pay-aware/pay_aware/internal/client/session"
	"github.com/pay-aware/pay_aware/internal/logging"
)

type printNavigator struct{}

func (printNavigator) Navigate(d session.RouteDecision) {
	if d.ResetToken != "" {
		fmt.Printf("-> %s (token %s)\n", d.Screen, d.ResetToken)
		return
	}
	fmt.Printf("-> %s\n", d.Screen)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	baseURL := os.Getenv("PAY_AWARE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	store, err := credentials.NewFileStore(filepath.Join(home, ".pay-aware", "credentials.json"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	client := api.New(baseURL, func(ctx context.Context) string {
		bearer, _ := credentials.Read(ctx, store, credentials.KeyAuthToken)
		return bearer
	})

	links := deeplink.NewQueue()
	nav := printNavigator{}
	router := session.NewRouter(store, client, links, nav, logger)
	pins := session.NewPinFlow(store, client, nav, logger)
	devices := session.NewDeviceRegistrar(store, client, logger)

	if len(os.Args) < 2 {
		usage()
		return nil
	}

	switch os.Args[1] {
	case "route":
		if len(os.Args) > 2 {
			links.Offer(os.Args[2])
		}
		router.DecideInitialRoute(ctx)
		return nil

	case "login":
		email, password := prompt("email"), prompt("password")
		sess, err := client.Login(ctx, email, password)
		if err != nil {
			return err
		}
		return storeSession(ctx, store, sess)

	case "register":
		name, email, password := prompt("name"), prompt("email"), prompt("password")
		sess, err := client.Register(ctx, name, email, password)
		if err != nil {
			return err
		}
		return storeSession(ctx, store, sess)

	case "pin":
		return pins.Login(ctx, prompt("pin"))

	case "set-pin":
		return pins.Enroll(ctx, prompt("new pin"))

	case "forgot-pin":
		pins.Forget(ctx)
		return nil

	case "device-token":
		if len(os.Args) < 3 {
			usage()
			return nil
		}
		return devices.Register(ctx, os.Args[2])

	case "subs":
		subs, err := client.ListSubscriptions(ctx)
		if err != nil {
			return err
		}
		for _, s := range subs {
			fmt.Printf("%-20s %8.2f due %s\n", s.ServiceName, s.Cost, s.NextPaymentDate.Format("2006-01-02"))
		}
		return nil

	case "logout":
		for _, key := range []string{credentials.KeyAuthToken, credentials.KeyUserID} {
			if err := store.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil

	default:
		usage()
		return nil
	}
}

func storeSession(ctx context.Context, store credentials.Store, sess api.Session) error {
	if err := store.Set(ctx, credentials.KeyAuthToken, sess.Token); err != nil {
		return err
	}
	return store.Set(ctx, credentials.KeyUserID, sess.UserID)
}

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func usage() {
	fmt.Println("usage: client <route [url] | register | login | pin | set-pin | forgot-pin | device-token <token> | subs | logout>")
}
