package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
)

// ErrNotLinked is returned by Connect when no device has been paired yet.
var ErrNotLinked = errors.New("whatsapp device is not linked; run whatsapp-link first")

// Config holds configuration for the WhatsApp session store.
type Config struct {
	DataDir string
}

// Client sends guest notifications from a linked WhatsApp account.
type Client struct {
	wa     *whatsmeow.Client
	logger *slog.Logger
}

// New opens the sqlite session store under cfg.DataDir and prepares a client for its first device.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create whatsapp data dir: %w", err)
	}
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("open whatsapp store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load whatsapp device: %w", err)
	}
	return &Client{
		wa:     whatsmeow.NewClient(device, nil),
		logger: logger.With("component", "whatsapp"),
	}, nil
}

// Linked reports whether the store holds a paired device.
func (c *Client) Linked() bool {
	return c.wa.Store.ID != nil
}

// Connect connects a previously linked device.
func (c *Client) Connect() error {
	if !c.Linked() {
		return ErrNotLinked
	}
	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("connect whatsapp: %w", err)
	}
	return nil
}

// Link pairs a new device, printing each QR code to out until the pairing finishes.
func (c *Client) Link(ctx context.Context, out io.Writer) error {
	if c.Linked() {
		return c.Connect()
	}
	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("open qr channel: %w", err)
	}
	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("connect whatsapp: %w", err)
	}
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			q, err := qrcode.New(evt.Code, qrcode.Medium)
			if err != nil {
				fmt.Fprintf(out, "QR code: %s\n", evt.Code)
				continue
			}
			fmt.Fprintln(out, q.ToSmallString(false))
			fmt.Fprintln(out, "Scan with WhatsApp: Settings > Linked Devices > Link a Device")
		case "success":
			c.logger.InfoContext(ctx, "device linked")
			return nil
		default:
			c.logger.InfoContext(ctx, "pairing event", "event", evt.Event)
		}
	}
	if !c.Linked() {
		return errors.New("pairing ended without linking a device")
	}
	return nil
}

// Disconnect closes the connection.
func (c *Client) Disconnect() {
	c.wa.Disconnect()
}

// SendText implements domain.TextSender.
func (c *Client) SendText(ctx context.Context, phone, body string) error {
	number := NormalizePhone(phone)
	if number == "" {
		return fmt.Errorf("invalid phone number %q", phone)
	}
	resp, err := c.wa.IsOnWhatsApp(ctx, []string{"+" + number})
	if err != nil {
		return fmt.Errorf("check whatsapp number: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not on whatsapp", number)
	}
	if _, err := c.wa.SendMessage(ctx, resp[0].JID, &waE2E.Message{Conversation: &body}); err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	return nil
}

// NormalizePhone strips everything but digits; an international "00" prefix is dropped.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "00")
}
