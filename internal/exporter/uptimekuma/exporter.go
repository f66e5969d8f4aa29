package uptimekuma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	. "link-checker/internal/domain"
)

var validate = validator.New()

type Config struct {
	MonitorURL string `json:"monitor_url" validate:"required,url"`
}

// UptimeKuma reports the run to a push monitor: "up" for a clean run, "down"
// with a short summary otherwise.
type UptimeKuma struct {
	monitorURL string
	client     *http.Client
}

func New(rawConfig json.RawMessage) (Exporter, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("invalid uptime kuma config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid uptime kuma config: %w", err)
	}

	return NewWithURL(cfg.MonitorURL), nil
}

func NewWithURL(monitorURL string) Exporter {
	return &UptimeKuma{
		monitorURL: monitorURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *UptimeKuma) Export(report *Report) error {
	target, err := url.Parse(u.monitorURL)
	if err != nil {
		return fmt.Errorf("invalid monitor url: %w", err)
	}

	status, msg := "up", "OK"
	if !report.Clean() {
		status = "down"
		msg = fmt.Sprintf("%d broken, %d redirects, %d errors, %d unreachable pages",
			report.Summary.Broken, report.Summary.Redirect, report.Summary.Error, len(report.PageFailures))
	}

	q := target.Query()
	q.Set("status", status)
	q.Set("msg", msg)
	q.Set("ping", fmt.Sprintf("%d", report.Duration.Milliseconds()))
	target.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to uptime kuma failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push to uptime kuma failed: status %d", resp.StatusCode)
	}
	return nil
}
