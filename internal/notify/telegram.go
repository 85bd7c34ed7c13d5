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
)

// TelegramSink sends plain-text messages via the Telegram bot API.
type TelegramSink struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramSink creates a sink posting to the given chat through the bot.
func NewTelegramSink(botToken, chatID string) *TelegramSink {
	return &TelegramSink{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TelegramSink) Name() string { return "telegram" }

// Send renders the message as text and calls the bot sendMessage endpoint.
func (s *TelegramSink) Send(ctx context.Context, msg Message) error {
	var text string
	switch msg.Kind {
	case KindOrderPlaced:
		text = orderText(msg)
	case KindRevenueReport:
		text = reportText(msg)
	default:
		return errors.Errorf("unsupported message kind %q", msg.Kind)
	}

	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("chat_id", func(e *jx.Encoder) { e.Str(s.chatID) })
		e.Field("text", func(e *jx.Encoder) { e.Str(text) })
	})

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(e.Bytes()))
	if err != nil {
		return errors.Wrap(err, "build sendMessage request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post sendMessage")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return errors.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

func orderText(msg Message) string {
	o := msg.Order
	var b strings.Builder

	b.WriteString("🔔 ĐƠN HÀNG MỚI!\n\n")
	fmt.Fprintf(&b, "👤 Khách hàng: %s\n", o.CustomerInfo.Name)
	fmt.Fprintf(&b, "📞 SĐT: %s\n", o.CustomerInfo.Phone)
	fmt.Fprintf(&b, "📍 Địa chỉ: %s\n\n", o.CustomerInfo.Address)

	b.WriteString("🛍️ Đơn hàng:\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "• %s x%d - %s\n", item.Name, item.Quantity, FormatVND(item.Price*int64(item.Quantity)))
		if len(item.Toppings) > 0 {
			names := make([]string, len(item.Toppings))
			for i, t := range item.Toppings {
				names[i] = t.Name
			}
			fmt.Fprintf(&b, "  Topping: %s\n", strings.Join(names, ", "))
		}
		fmt.Fprintf(&b, "  Đường: %s | Đá: %s\n", item.Sugar, item.Ice)
		if item.Note != "" {
			fmt.Fprintf(&b, "  Ghi chú: %s\n", item.Note)
		}
	}

	fmt.Fprintf(&b, "\n💰 Tổng cộng: %s\n", FormatVND(o.Total))
	fmt.Fprintf(&b, "⏰ Thời gian: %s\n", o.CreatedAt.Format("15:04:05 02/01/2006"))
	fmt.Fprintf(&b, "📱 ID đơn hàng: #%s", o.ID)
	return b.String()
}

func reportText(msg Message) string {
	r := msg.Report
	var b strings.Builder

	b.WriteString("📊 Báo cáo doanh thu\n\n")
	fmt.Fprintf(&b, "Thời gian: %s - %s\n", r.Start.Format("02/01/2006"), r.End.Format("02/01/2006"))
	fmt.Fprintf(&b, "Tổng doanh thu: %s\n", FormatVND(r.TotalRevenue))
	fmt.Fprintf(&b, "Số đơn hàng: %d\n", r.TotalOrders)
	fmt.Fprintf(&b, "Giá trị trung bình: %s\n", FormatVND(r.AverageOrderValue))

	if len(r.TopProducts) > 0 {
		b.WriteString("\nTop sản phẩm:\n")
		for i, p := range r.TopProducts {
			fmt.Fprintf(&b, "%d. %s — x%d, %s\n", i+1, p.Name, p.Quantity, FormatVND(p.Revenue))
		}
	}
	return b.String()
}
