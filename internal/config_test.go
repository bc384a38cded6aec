package internal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-policy/internal"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://localhost/expense_policy",
		},
		Security: internal.SecurityConfig{
			AccessTokenSecret:    "access-secret-0123456789abcdef0123",
			RefreshTokenSecret:   "refresh-secret-0123456789abcdef012",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			BCryptCost:           10,
		},
		Expense: internal.ExpenseConfig{MaxAmount: "999999.99", Timezone: "America/New_York"},
		Observability: internal.ObservabilityConfig{
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
	}
}

var _ = Describe("Config", func() {
	It("should accept a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("should report struct tag violations by field", func() {
		cfg := validConfig()
		cfg.Server.Port = 0
		cfg.Security.AccessTokenSecret = "short"

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Config.Server.Port"))
		Expect(err.Error()).To(ContainSubstring("Config.Security.AccessTokenSecret"))
	})

	It("should reject more idle than open connections", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 20
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("should reject identical token secrets", func() {
		cfg := validConfig()
		cfg.Security.RefreshTokenSecret = cfg.Security.AccessTokenSecret
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("must differ")))
	})

	It("should reject a refresh lifetime shorter than the access lifetime", func() {
		cfg := validConfig()
		cfg.Security.RefreshTokenDuration = 2 * time.Hour
		cfg.Security.AccessTokenDuration = 3 * time.Hour
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	Describe("ExpenseConfig", func() {
		It("should parse the ceiling as a decimal", func() {
			cfg := internal.ExpenseConfig{MaxAmount: " 1500.50 "}
			ceiling, err := cfg.Ceiling()
			Expect(err).NotTo(HaveOccurred())
			Expect(ceiling.StringFixed(2)).To(Equal("1500.50"))
		})

		It("should reject a non-positive or malformed ceiling", func() {
			Expect((&internal.ExpenseConfig{MaxAmount: "0"}).Validate()).To(HaveOccurred())
			Expect((&internal.ExpenseConfig{MaxAmount: "lots"}).Validate()).To(HaveOccurred())
		})

		It("should default to UTC and reject unknown zones", func() {
			loc, err := (&internal.ExpenseConfig{}).Location()
			Expect(err).NotTo(HaveOccurred())
			Expect(loc).To(Equal(time.UTC))

			_, err = (&internal.ExpenseConfig{Timezone: "Mars/Olympus"}).Location()
			Expect(err).To(HaveOccurred())
		})
	})

	It("should fall back to defaults when the environment is empty", func() {
		cfg := internal.LoadConfigFromEnv()
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Expense.MaxAmount).To(Equal("999999.99"))
		Expect(cfg.Observability.Logging.Format).To(Equal("json"))
	})
})
