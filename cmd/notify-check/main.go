// Command notify-check smoke-tests a running notification service by calling
// its notifications endpoint with sample payloads.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type options struct {
	BaseURL string
	Mode    string
	OrderID string
	Message string
	Force   bool
	Timeout time.Duration
}

var modes = []string{"describe", "health", "test", "order", "payment", "urgent", "customer-message"}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("notify-check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.BaseURL, "url", "http://localhost:8005", "Notification service base URL")
	fs.StringVar(&opts.Mode, "mode", "describe", "One of: "+strings.Join(modes, ", "))
	fs.StringVar(&opts.OrderID, "order", "", "Order id for order and payment samples")
	fs.StringVar(&opts.Message, "message", "Test alert from notify-check", "Text for urgent and customer-message samples")
	fs.BoolVar(&opts.Force, "force", false, "Re-send an order that was already notified")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Request timeout")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Notification service smoke test\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  notify-check [--url <URL>] [--mode <MODE>] [--order <ID>]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if !validMode(opts.Mode) {
		return options{}, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if opts.OrderID == "" {
		opts.OrderID = fmt.Sprintf("CHECK-%d", time.Now().Unix())
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return opts, nil
}

func validMode(mode string) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

// requestBody returns the POST body for mode, or nil for GET modes.
func requestBody(opts options) fiber.Map {
	now := time.Now().UTC().Format(time.RFC3339)
	switch opts.Mode {
	case "test":
		return fiber.Map{"testMode": true}
	case "order":
		return fiber.Map{
			"type":  "order",
			"force": opts.Force,
			"data": fiber.Map{
				"orderId": opts.OrderID,
				"customerInfo": fiber.Map{
					"fullName": "Test Customer",
					"email":    "test@example.com",
					"phone":    "+447700900000",
					"address":  "1 Test Street",
					"city":     "London",
					"postcode": "E1 6AN",
				},
				"items": []fiber.Map{
					{"name": "Jollof Rice", "quantity": 2, "price": 12.99},
					{"name": "Plantain", "quantity": 1, "price": 4.99},
				},
				"deliveryFee":     21.99,
				"finalTotal":      52.96,
				"fulfillmentType": "delivery",
				"paymentMethod":   "card",
				"timestamp":       now,
			},
		}
	case "payment":
		return fiber.Map{
			"type": "payment",
			"data": fiber.Map{
				"orderId":       opts.OrderID,
				"customerInfo":  fiber.Map{"fullName": "Test Customer"},
				"amount":        52.96,
				"status":        "success",
				"paymentMethod": "card",
				"timestamp":     now,
			},
		}
	case "urgent":
		return fiber.Map{
			"type": "urgent",
			"data": fiber.Map{"message": opts.Message, "raisedBy": "notify-check"},
		}
	case "customer-message":
		return fiber.Map{
			"type": "customer-message",
			"data": fiber.Map{"name": "Test Customer", "email": "test@example.com", "message": opts.Message},
		}
	}
	return nil
}

func endpoint(opts options) string {
	if opts.Mode == "health" {
		return opts.BaseURL + "/api/v1/health"
	}
	return opts.BaseURL + "/api/v1/notifications"
}

func run(opts options, stdout io.Writer) error {
	var agent *fiber.Agent
	if body := requestBody(opts); body != nil {
		agent = fiber.Post(endpoint(opts)).JSON(body)
	} else {
		agent = fiber.Get(endpoint(opts))
	}
	agent.Timeout(opts.Timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	code, resp, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(resp)
	}
	fmt.Fprintf(stdout, "HTTP %d\n%s\n", code, pretty.String())

	if code >= fiber.StatusBadRequest {
		return fmt.Errorf("service answered %d", code)
	}
	var envelope struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(resp, &envelope); err == nil && !envelope.Success {
		return errors.New("no channel delivered")
	}
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
