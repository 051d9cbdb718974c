package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
	LockWaitMS   int

	// Routing table for the notification sink.
	TelegramToken  string
	HeadChatIDs    []string
	FinanceChatIDs []string
	PayerChatIDs   []string

	// Spreadsheet mirror ingestion endpoint.
	SheetsWebhookURL string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "budget"),
		MySQLUser: getenv("MYSQL_USER", "budget"),
		MySQLPass: getenv("MYSQL_PASS", "budget"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		LockWaitMS:   getenvInt("LOCK_WAIT_MS", 3000),

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		HeadChatIDs:    splitList(os.Getenv("HEAD_CHAT_IDS")),
		FinanceChatIDs: splitList(os.Getenv("FINANCE_CHAT_IDS")),
		PayerChatIDs:   splitList(os.Getenv("PAYER_CHAT_IDS")),

		SheetsWebhookURL: os.Getenv("SHEETS_WEBHOOK_URL"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.TelegramToken == "" {
		return errors.New("missing TELEGRAM_BOT_TOKEN")
	}
	if len(c.HeadChatIDs) == 0 || len(c.FinanceChatIDs) == 0 || len(c.PayerChatIDs) == 0 {
		return errors.New("missing routing table (HEAD_CHAT_IDS/FINANCE_CHAT_IDS/PAYER_CHAT_IDS)")
	}
	if c.SheetsWebhookURL == "" {
		return errors.New("missing SHEETS_WEBHOOK_URL")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
