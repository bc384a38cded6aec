package policy_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-policy/internal/policy"
)

var _ = Describe("Period", func() {
	It("should know its valid values and labels", func() {
		Expect(policy.PeriodDaily.Valid()).To(BeTrue())
		Expect(policy.PeriodMonthly.Valid()).To(BeTrue())
		Expect(policy.Period("WEEKLY").Valid()).To(BeFalse())
		Expect(policy.PeriodDaily.Label()).To(Equal("daily"))
		Expect(policy.PeriodMonthly.Label()).To(Equal("monthly"))
	})

	DescribeTable("windows in UTC",
		func(p policy.Period, date, start, end time.Time) {
			w := p.WindowFor(date, time.UTC)
			Expect(w.Start).To(Equal(start))
			Expect(w.End).To(Equal(end))
		},
		Entry("daily mid-day", policy.PeriodDaily,
			time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)),
		Entry("daily last nanosecond", policy.PeriodDaily,
			time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)),
		Entry("monthly leap February", policy.PeriodMonthly,
			time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		Entry("monthly December rolls the year", policy.PeriodMonthly,
			time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	)

	It("should treat the window as half-open", func() {
		w := policy.PeriodDaily.WindowFor(time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), nil)
		Expect(w.Contains(w.Start)).To(BeTrue())
		Expect(w.Contains(w.End.Add(-time.Nanosecond))).To(BeTrue())
		Expect(w.Contains(w.End)).To(BeFalse())
		Expect(w.Contains(w.Start.Add(-time.Nanosecond))).To(BeFalse())
	})

	It("should cut days in the given zone", func() {
		ny, err := time.LoadLocation("America/New_York")
		Expect(err).NotTo(HaveOccurred())

		// 02:00 UTC on the 16th is still the 15th in New York.
		w := policy.PeriodDaily.WindowFor(time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC), ny)
		Expect(w.Start).To(BeTemporally("==", time.Date(2024, 3, 15, 0, 0, 0, 0, ny)))
		Expect(w.End).To(BeTemporally("==", time.Date(2024, 3, 16, 0, 0, 0, 0, ny)))
	})

	It("should follow daylight saving changes", func() {
		ny, err := time.LoadLocation("America/New_York")
		Expect(err).NotTo(HaveOccurred())

		w := policy.PeriodDaily.WindowFor(time.Date(2024, 3, 10, 12, 0, 0, 0, ny), ny)
		Expect(w.End.Sub(w.Start)).To(Equal(23 * time.Hour))
	})
})
