package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/expense-policy/internal"
)

var _ = Describe("AppError", func() {
	It("should match sentinels by code through wrapping", func() {
		wrapped := fmt.Errorf("submit: %w", appErrors.ErrPolicyMissing.WithCause(errors.New("none")))
		Expect(errors.Is(wrapped, appErrors.ErrPolicyMissing)).To(BeTrue())
		Expect(errors.Is(wrapped, appErrors.ErrPolicyNotFound)).To(BeFalse())

		appErr, ok := appErrors.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("should leave sentinels untouched when adding a cause", func() {
		_ = appErrors.ErrExpenseNotFound.WithCause(errors.New("db"))
		Expect(appErrors.ErrExpenseNotFound.Cause).To(BeNil())
	})

	It("should surface the first field message for validation errors", func() {
		err := appErrors.NewValidationFieldError("amount", "amount must be positive", appErrors.ErrCodeInvalidAmount)
		Expect(err.Error()).To(Equal("amount must be positive"))
		Expect(err.Code).To(Equal(appErrors.ErrCodeValidationFailed))
	})

	It("should render the error envelope", func() {
		status, body := appErrors.ErrCategoryInUse.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusConflict))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"code":"CATEGORY_IN_USE"`))
	})

	It("should not treat plain errors as app errors", func() {
		_, ok := appErrors.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Identity context", func() {
	It("should round-trip the caller", func() {
		ctx := appErrors.ContextWithIdentity(context.Background(), appErrors.Identity{UserID: "u-1", Email: "a@b.c"})
		id, ok := appErrors.IdentityFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(id.Email).To(Equal("a@b.c"))
		Expect(appErrors.UserIDFromContext(ctx)).To(Equal("u-1"))
	})

	It("should treat an empty user id as anonymous", func() {
		ctx := appErrors.ContextWithIdentity(context.Background(), appErrors.Identity{})
		_, ok := appErrors.IdentityFromContext(ctx)
		Expect(ok).To(BeFalse())
	})
})
