package logger_test

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-policy/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	Describe("ParseLevel", func() {
		It("should map known level names", func() {
			Expect(logger.ParseLevel("debug")).To(Equal(slog.LevelDebug))
			Expect(logger.ParseLevel("WARN")).To(Equal(slog.LevelWarn))
			Expect(logger.ParseLevel("error")).To(Equal(slog.LevelError))
		})

		It("should fall back to info", func() {
			Expect(logger.ParseLevel("")).To(Equal(slog.LevelInfo))
			Expect(logger.ParseLevel("verbose")).To(Equal(slog.LevelInfo))
		})
	})

	Describe("context logger", func() {
		It("should return the process logger when none is stored", func() {
			Expect(logger.From(context.Background())).To(BeIdenticalTo(logger.LoggerWrapper()))
		})

		It("should return the enriched logger stored by With", func() {
			ctx := logger.With(context.Background(), "request_id", "abc")
			Expect(logger.From(ctx)).NotTo(BeIdenticalTo(logger.LoggerWrapper()))
		})
	})
})
