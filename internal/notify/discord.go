package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/buanay/pos/internal/domain/order"
)

// Embed colors, matching the shop's existing webhook style.
const (
	colorOrder   = 0x3498db
	colorRevenue = 0x2ecc71
)

// DiscordSink posts rich embeds to a Discord webhook.
type DiscordSink struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSink creates a sink for the given webhook URL.
func NewDiscordSink(webhookURL string) *DiscordSink {
	return &DiscordSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *DiscordSink) Name() string { return "discord" }

// Send encodes the message as a webhook embed and posts it.
func (s *DiscordSink) Send(ctx context.Context, msg Message) error {
	var body []byte
	switch msg.Kind {
	case KindOrderPlaced:
		body = encodeOrderEmbed(msg)
	case KindRevenueReport:
		body = encodeReportEmbed(msg)
	default:
		return errors.Errorf("unsupported message kind %q", msg.Kind)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post webhook")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// encodeOrderEmbed builds the new-order embed payload.
func encodeOrderEmbed(msg Message) []byte {
	o := msg.Order
	e := &jx.Encoder{}

	e.Obj(func(e *jx.Encoder) {
		e.Field("embeds", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("title", func(e *jx.Encoder) { e.Str("🆕 ĐƠN HÀNG MỚI") })
					e.Field("color", func(e *jx.Encoder) { e.Int(colorOrder) })
					e.Field("description", func(e *jx.Encoder) {
						e.Str("**Thời gian:** " + o.CreatedAt.Format("15:04:05 02/01/2006"))
					})
					e.Field("fields", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							embedField(e, "👤 KHÁCH HÀNG", fmt.Sprintf("**%s**\n📱 %s\n📍 %s",
								o.CustomerInfo.Name, o.CustomerInfo.Phone, o.CustomerInfo.Address))
							embedField(e, "📋 CHI TIẾT ĐƠN HÀNG", orderItemLines(msg.Order))
							embedField(e, "💰 TỔNG TIỀN", "**"+FormatVND(o.Total)+"**")
						})
					})
					embedFooter(e, o.CreatedAt)
				})
			})
		})
	})
	return e.Bytes()
}

// encodeReportEmbed builds the revenue-report embed payload.
func encodeReportEmbed(msg Message) []byte {
	r := msg.Report
	e := &jx.Encoder{}

	e.Obj(func(e *jx.Encoder) {
		e.Field("embeds", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("title", func(e *jx.Encoder) { e.Str("📊 Báo cáo doanh thu") })
					e.Field("color", func(e *jx.Encoder) { e.Int(colorRevenue) })
					e.Field("fields", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							embedField(e, "Thời gian", fmt.Sprintf("Từ %s đến %s",
								r.Start.Format("02/01/2006"), r.End.Format("02/01/2006")))
							embedField(e, "Tổng doanh thu", FormatVND(r.TotalRevenue))
							embedField(e, "Số đơn hàng", fmt.Sprintf("%d", r.TotalOrders))
							embedField(e, "Giá trị trung bình", FormatVND(r.AverageOrderValue))
							if len(r.TopProducts) > 0 {
								embedField(e, "Top sản phẩm", topProductLines(msg))
							}
						})
					})
					embedFooter(e, time.Now())
				})
			})
		})
	})
	return e.Bytes()
}

func embedField(e *jx.Encoder, name, value string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(name) })
		e.Field("value", func(e *jx.Encoder) { e.Str(value) })
		e.Field("inline", func(e *jx.Encoder) { e.Bool(false) })
	})
}

func embedFooter(e *jx.Encoder, ts time.Time) {
	e.Field("footer", func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("text", func(e *jx.Encoder) { e.Str("BuaNay POS System") })
		})
	})
	e.Field("timestamp", func(e *jx.Encoder) { e.Str(ts.UTC().Format(time.RFC3339)) })
}

// orderItemLines renders the per-line breakdown: size, quantity, price,
// sugar/ice, toppings, and note.
func orderItemLines(o *order.Order) string {
	var b strings.Builder
	for i, item := range o.Items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, item.Name)
		fmt.Fprintf(&b, "▫️ Size: %s\n", item.Size)
		fmt.Fprintf(&b, "▫️ Số lượng: x%d\n", item.Quantity)
		fmt.Fprintf(&b, "▫️ Giá: %s\n", FormatVND(item.Price))
		fmt.Fprintf(&b, "▫️ Đường: %s\n", item.Sugar)
		fmt.Fprintf(&b, "▫️ Đá: %s", item.Ice)
		if len(item.Toppings) > 0 {
			parts := make([]string, len(item.Toppings))
			for j, t := range item.Toppings {
				parts[j] = fmt.Sprintf("%s (+%s)", t.Name, FormatVND(t.Price))
			}
			fmt.Fprintf(&b, "\n▫️ Topping: %s", strings.Join(parts, ", "))
		}
		if item.Note != "" {
			fmt.Fprintf(&b, "\n▫️ Ghi chú: %s", item.Note)
		}
	}
	return b.String()
}

func topProductLines(msg Message) string {
	var b strings.Builder
	for i, p := range msg.Report.TopProducts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s — x%d, %s", i+1, p.Name, p.Quantity, FormatVND(p.Revenue))
	}
	return b.String()
}
