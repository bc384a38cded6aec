package expense_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	appErrors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/expense"
)

var _ = Describe("SubmitExpenseDTO", func() {
	ceiling := decimal.RequireFromString("999999.99")

	decode := func(body string) expense.SubmitExpenseDTO {
		var dto expense.SubmitExpenseDTO
		Expect(json.Unmarshal([]byte(body), &dto)).To(Succeed())
		return dto
	}

	codeOf := func(err error, field string) string {
		appErr, ok := appErrors.IsAppError(err)
		Expect(ok).To(BeTrue())
		for _, f := range appErr.Details.(appErrors.ValidationErrors).Errors {
			if f.Field == field {
				return f.Code
			}
		}
		return ""
	}

	It("should parse a calendar date in the configured zone", func() {
		loc, err := time.LoadLocation("America/New_York")
		Expect(err).NotTo(HaveOccurred())

		dto := decode(`{"amount":"12.50","date":"2025-03-09","description":"Taxi","categoryId":"c-1"}`)
		date, err := dto.Validate(ceiling, loc)
		Expect(err).NotTo(HaveOccurred())
		Expect(date.Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, loc))).To(BeTrue())
	})

	It("should reject amounts with extreme exponents promptly", func() {
		for _, raw := range []string{"1e-100000000", "1e100000000"} {
			dto := decode(`{"amount":` + raw + `,"date":"2025-03-09","description":"Taxi","categoryId":"c-1"}`)

			start := time.Now()
			_, err := dto.Validate(ceiling, time.UTC)
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
			Expect(err).To(HaveOccurred())
			Expect(codeOf(err, "amount")).NotTo(BeEmpty())
		}
	})

	It("should report description problems as INVALID_DESCRIPTION", func() {
		dto := decode(`{"amount":"1.00","date":"2025-03-09","description":"   ","categoryId":"c-1"}`)
		_, err := dto.Validate(ceiling, time.UTC)
		Expect(codeOf(err, "description")).To(Equal(string(appErrors.ErrCodeInvalidDescription)))
	})
})
