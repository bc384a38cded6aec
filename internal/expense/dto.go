package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/core/common/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	dateLayout       = "2006-01-02"

	maxDescriptionLength = 500
)

type SubmitExpenseDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId"`
}

// Validate checks the submission against the amount ceiling and parses the
// date. A bare calendar date is taken as midnight in loc.
func (d *SubmitExpenseDTO) Validate(ceiling decimal.Decimal, loc *time.Location) (time.Time, error) {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Amount(ceiling)
	v.Field("description", strings.TrimSpace(d.Description)).Description(maxDescriptionLength)
	v.Field("categoryId", d.CategoryID).Required()

	var date time.Time
	v.Field("date", d.Date).
		Required().
		Custom(func(interface{}) *errors.ValidationError {
			parsed, ok := parseDate(d.Date, loc)
			if !ok {
				return &errors.ValidationError{
					Field:   "date",
					Message: "date must be YYYY-MM-DD or RFC 3339",
					Code:    string(errors.ErrCodeInvalidDate),
				}
			}
			date = parsed
			return nil
		})

	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type ListFilter struct {
	Status     *Status
	CategoryID *string
	Limit      int
	Offset     int
}

// ListExpensesDTO is the raw query of a listing request. A nil Limit means
// the default page size.
type ListExpensesDTO struct {
	Status     string
	CategoryID string
	Limit      *int
	Offset     int
}

func (d *ListExpensesDTO) Filter() (ListFilter, error) {
	v := validation.NewValidator()
	if d.Status != "" {
		v.Field("status", d.Status).
			OneOf(errors.ErrCodeInvalidStatus, string(StatusSubmitted), string(StatusApproved), string(StatusRejected))
	}
	v.Field("limit", d.Limit).Custom(func(interface{}) *errors.ValidationError {
		if d.Limit != nil && (*d.Limit < 1 || *d.Limit > maxListLimit) {
			return &errors.ValidationError{Field: "limit", Message: "limit must be between 1 and 100", Code: string(errors.ErrCodeValidationFailed)}
		}
		return nil
	})
	v.Field("offset", d.Offset).Custom(func(interface{}) *errors.ValidationError {
		if d.Offset < 0 {
			return &errors.ValidationError{Field: "offset", Message: "offset must not be negative", Code: string(errors.ErrCodeValidationFailed)}
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return ListFilter{}, err
	}

	f := ListFilter{Limit: defaultListLimit, Offset: d.Offset}
	if d.Limit != nil {
		f.Limit = *d.Limit
	}
	if d.Status != "" {
		s := Status(d.Status)
		f.Status = &s
	}
	if d.CategoryID != "" {
		c := d.CategoryID
		f.CategoryID = &c
	}
	return f, nil
}

type SubmissionResponse struct {
	ExpenseID       string `json:"expenseId"`
	Status          Status `json:"status"`
	AutoApproved    bool   `json:"autoApproved"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

func (r *SubmissionResult) ToResponse() SubmissionResponse {
	return SubmissionResponse{
		ExpenseID:       r.ExpenseID,
		Status:          r.Status,
		AutoApproved:    r.AutoApproved,
		RejectionReason: r.RejectionReason,
	}
}

type ExpenseResponse struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organizationId"`
	CategoryID      string    `json:"categoryId"`
	CategoryName    string    `json:"categoryName,omitempty"`
	UserID          string    `json:"userId"`
	PolicyID        string    `json:"policyId"`
	Amount          string    `json:"amount"`
	Date            string    `json:"date"`
	Description     string    `json:"description"`
	Status          Status    `json:"status"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (e *Expense) ToResponse(loc *time.Location) ExpenseResponse {
	if loc == nil {
		loc = time.UTC
	}
	return ExpenseResponse{
		ID:              e.ID,
		OrganizationID:  e.OrganizationID,
		CategoryID:      e.CategoryID,
		CategoryName:    e.CategoryName,
		UserID:          e.UserID,
		PolicyID:        e.PolicyID,
		Amount:          e.Amount.StringFixed(2),
		Date:            e.Date.In(loc).Format(dateLayout),
		Description:     e.Description,
		Status:          e.Status,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
	}
}

type ExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type StatusTotals struct {
	Count  int    `json:"count"`
	Amount string `json:"amount"`
}

type PeriodStatsResponse struct {
	Total     StatusTotals `json:"total"`
	Approved  StatusTotals `json:"approved"`
	Submitted StatusTotals `json:"submitted"`
	Rejected  StatusTotals `json:"rejected"`
}

type StatsResponse struct {
	AllTime   PeriodStatsResponse `json:"allTime"`
	ThisMonth PeriodStatsResponse `json:"thisMonth"`
}

func (t Totals) toResponse() StatusTotals {
	return StatusTotals{Count: t.Count, Amount: t.Amount.StringFixed(2)}
}

func (p PeriodStats) toResponse() PeriodStatsResponse {
	return PeriodStatsResponse{
		Total:     p.Total.toResponse(),
		Approved:  p.Approved.toResponse(),
		Submitted: p.Submitted.toResponse(),
		Rejected:  p.Rejected.toResponse(),
	}
}

func (s *Stats) ToResponse() StatsResponse {
	return StatsResponse{
		AllTime:   s.AllTime.toResponse(),
		ThisMonth: s.ThisMonth.toResponse(),
	}
}
