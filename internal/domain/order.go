package domain

import (
	"strings"
	"time"

	apperrors "linentrack/internal/errors"
)

// Columns of the production_orders store that stage updates may write.
const (
	ColumnStatus           = "status"
	ColumnWeavingDate      = "weaving_date"
	ColumnDyeingDate       = "dyeing_date"
	ColumnSewingDate       = "sewing_date"
	ColumnShippingDate     = "shipping_date"
	ColumnShippingMethod   = "shipping_method"
	ColumnShippingDestName = "shipping_dest_name"
	ColumnLastUpdated      = "last_updated"
)

// ShippingMethodUnset is the "no selection" value of the shipping method
// picker. It never overwrites a stored method.
const ShippingMethodUnset = "선택안함"

type Order struct {
	ID               string
	ClientName       string
	ProductName      string
	Quantity         float64
	Unit             string
	Color            string
	YarnType         string
	Weight           string
	WorkSite         string
	Manager          string
	Contact          string
	OrderType        string
	OrderDate        string
	DeliveryDate     string
	DeliveryTo       string
	EmailSentDate    string
	Status           Stage
	WeavingDate      string
	DyeingDate       string
	SewingDate       string
	ShippingDate     string
	ShippingMethod   string
	ShippingDestName string
	Note             string
	LastUpdated      string
}

// OrderFields are the attributes supplied when an order is registered.
type OrderFields struct {
	ClientName    string
	ProductName   string
	Quantity      float64
	Unit          string
	Color         string
	YarnType      string
	Weight        string
	WorkSite      string
	Manager       string
	Contact       string
	OrderType     string
	OrderDate     string
	DeliveryDate  string
	DeliveryTo    string
	EmailSentDate string
	Note          string
}

func (f OrderFields) Validate() error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(f.ClientName) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "clientName",
			Message: "clientName is required",
		})
	}
	if strings.TrimSpace(f.ProductName) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productName",
			Message: "productName is required",
		})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// NewOrder builds a record in the initial stage. It does not validate;
// callers that require client and product names call Validate first.
func NewOrder(f OrderFields, now time.Time) Order {
	orderDate := strings.TrimSpace(f.OrderDate)
	if orderDate == "" {
		orderDate = FormatDate(now)
	} else {
		orderDate, _ = NormalizeDate(orderDate)
	}

	return Order{
		ClientName:    strings.TrimSpace(f.ClientName),
		ProductName:   strings.TrimSpace(f.ProductName),
		Quantity:      f.Quantity,
		Unit:          strings.TrimSpace(f.Unit),
		Color:         strings.TrimSpace(f.Color),
		YarnType:      strings.TrimSpace(f.YarnType),
		Weight:        strings.TrimSpace(f.Weight),
		WorkSite:      strings.TrimSpace(f.WorkSite),
		Manager:       strings.TrimSpace(f.Manager),
		Contact:       strings.TrimSpace(f.Contact),
		OrderType:     strings.TrimSpace(f.OrderType),
		OrderDate:     orderDate,
		DeliveryDate:  strings.TrimSpace(f.DeliveryDate),
		DeliveryTo:    strings.TrimSpace(f.DeliveryTo),
		EmailSentDate: strings.TrimSpace(f.EmailSentDate),
		Status:        StageReceiptRecorded,
		Note:          f.Note,
		LastUpdated:   FormatTimestamp(now),
	}
}

type StageChange struct {
	Status         Stage
	StageDate      string
	ShippingMethod string
	ShippingDest   string
}

// StageUpdate is the partial set of columns written by a stage change.
type StageUpdate struct {
	Status           Stage
	DateColumn       string
	StageDate        string
	ShippingMethod   *string
	ShippingDestName *string
	LastUpdated      string
}

func (u StageUpdate) Columns() map[string]any {
	cols := map[string]any{
		ColumnStatus:      string(u.Status),
		ColumnLastUpdated: u.LastUpdated,
	}
	if u.DateColumn != "" {
		cols[u.DateColumn] = u.StageDate
	}
	if u.ShippingMethod != nil {
		cols[ColumnShippingMethod] = *u.ShippingMethod
	}
	if u.ShippingDestName != nil {
		cols[ColumnShippingDestName] = *u.ShippingDestName
	}
	return cols
}

// AdvanceStage moves o to change.Status and returns the columns to persist.
// Any target stage is accepted, including earlier ones; o is left untouched
// on error.
func AdvanceStage(o *Order, change StageChange, now time.Time) (StageUpdate, error) {
	stage, err := ParseStage(string(change.Status))
	if err != nil {
		return StageUpdate{}, err
	}

	stageDate := strings.TrimSpace(change.StageDate)
	if stageDate == "" {
		stageDate = FormatDate(now)
	} else {
		normalized, ok := NormalizeDate(stageDate)
		if !ok {
			return StageUpdate{}, apperrors.NewValidationError("invalid stage date", apperrors.ValidationDetail{
				Field:   "stageDate",
				Message: "stageDate must be a date such as 2024-03-01",
			})
		}
		stageDate = normalized
	}

	update := StageUpdate{
		Status:      stage,
		DateColumn:  stage.DateColumn(),
		StageDate:   stageDate,
		LastUpdated: FormatTimestamp(now),
	}

	if stage == StageShipped {
		method := strings.TrimSpace(change.ShippingMethod)
		if method != "" && method != ShippingMethodUnset {
			update.ShippingMethod = &method
		}
		dest := strings.TrimSpace(change.ShippingDest)
		if dest != "" {
			update.ShippingDestName = &dest
		}
	}

	o.Apply(update)
	return update, nil
}

// Apply copies a stage update onto the in-memory record.
func (o *Order) Apply(u StageUpdate) {
	o.Status = u.Status
	o.LastUpdated = u.LastUpdated
	switch u.DateColumn {
	case ColumnWeavingDate:
		o.WeavingDate = u.StageDate
	case ColumnDyeingDate:
		o.DyeingDate = u.StageDate
	case ColumnSewingDate:
		o.SewingDate = u.StageDate
	case ColumnShippingDate:
		o.ShippingDate = u.StageDate
	}
	if u.ShippingMethod != nil {
		o.ShippingMethod = *u.ShippingMethod
	}
	if u.ShippingDestName != nil {
		o.ShippingDestName = *u.ShippingDestName
	}
}
