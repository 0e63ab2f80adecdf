package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"linentrack/internal/domain"
	apperrors "linentrack/internal/errors"
)

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// Filter narrows an order listing. Every set criterion must hold. From and
// To are inclusive calendar days; an empty Statuses matches every stage.
type Filter struct {
	From     *time.Time
	To       *time.Time
	Statuses []domain.Stage
	Text     string
}

// ParseFilter builds a Filter from query input. Dates are parsed leniently
// and stages accept either the code or the label.
func ParseFilter(from, to string, statuses []string, text string) (Filter, error) {
	var f Filter
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(from) != "" {
		t, err := domain.ParseDate(from)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "from", Message: "from must be a date such as 2024-03-01"})
		} else {
			f.From = &t
		}
	}
	if strings.TrimSpace(to) != "" {
		t, err := domain.ParseDate(to)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "to", Message: "to must be a date such as 2024-03-31"})
		} else {
			f.To = &t
		}
	}

	for _, s := range statuses {
		if strings.TrimSpace(s) == "" {
			continue
		}
		stage, err := domain.ParseStage(s)
		if err != nil {
			ve, _ := apperrors.IsValidationError(err)
			details = append(details, ve.Details...)
			continue
		}
		f.Statuses = append(f.Statuses, stage)
	}

	if len(details) > 0 {
		return Filter{}, apperrors.NewValidationError("invalid filter", details...)
	}

	f.Text = text
	return f, nil
}

// Match reports whether o satisfies every criterion of f.
func (f Filter) Match(o domain.Order) bool {
	if f.From != nil || f.To != nil {
		day, err := domain.ParseDate(o.OrderDate)
		if err != nil {
			return false
		}
		if f.From != nil && day.Before(*f.From) {
			return false
		}
		if f.To != nil && day.After(*f.To) {
			return false
		}
	}

	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Text != "" && !strings.Contains(o.ClientName, f.Text) && !strings.Contains(o.ProductName, f.Text) {
		return false
	}

	return true
}

type ListOrdersUseCase struct {
	repo   OrderReader
	logger *zap.Logger
}

func NewListOrdersUseCase(repo OrderReader, logger *zap.Logger) *ListOrdersUseCase {
	return &ListOrdersUseCase{repo: repo, logger: logger}
}

// List reloads the whole collection and returns the matching orders, most
// recent order_date first. Orders sharing a date keep the store order.
func (uc *ListOrdersUseCase) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	orders, err := uc.repo.List(ctx)
	if err != nil {
		uc.logger.Error("failed to load orders", zap.Error(err))
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate > orders[j].OrderDate
	})

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}

	uc.logger.Debug("orders listed", zap.Int("total", len(orders)), zap.Int("matched", len(out)))
	return out, nil
}

func (uc *ListOrdersUseCase) Get(ctx context.Context, id string) (*domain.Order, error) {
	return uc.repo.FindByID(ctx, id)
}
