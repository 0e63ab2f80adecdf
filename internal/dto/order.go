package dto

import "time"

type CreateOrderRequest struct {
	ClientName    string  `json:"clientName"`
	ProductName   string  `json:"productName"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	Color         string  `json:"color"`
	YarnType      string  `json:"yarnType"`
	Weight        string  `json:"weight"`
	WorkSite      string  `json:"workSite"`
	Manager       string  `json:"manager"`
	Contact       string  `json:"contact"`
	OrderType     string  `json:"orderType"`
	OrderDate     string  `json:"orderDate"`
	DeliveryDate  string  `json:"deliveryDate"`
	DeliveryTo    string  `json:"deliveryTo"`
	EmailSentDate string  `json:"emailSentDate"`
	Note          string  `json:"note"`
}

type AdvanceStageRequest struct {
	Status           string `json:"status"`
	StageDate        string `json:"stageDate"`
	ShippingMethod   string `json:"shippingMethod"`
	ShippingDestName string `json:"shippingDestName"`
}

type BulkAdvanceRequest struct {
	OrderIDs []string `json:"orderIds"`
	AdvanceStageRequest
}

type OrderDTO struct {
	ID               string  `json:"id"`
	ClientName       string  `json:"clientName"`
	ProductName      string  `json:"productName"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	Color            string  `json:"color"`
	YarnType         string  `json:"yarnType"`
	Weight           string  `json:"weight"`
	WorkSite         string  `json:"workSite"`
	Manager          string  `json:"manager"`
	Contact          string  `json:"contact"`
	OrderType        string  `json:"orderType"`
	OrderDate        string  `json:"orderDate"`
	DeliveryDate     string  `json:"deliveryDate"`
	DeliveryTo       string  `json:"deliveryTo"`
	EmailSentDate    string  `json:"emailSentDate"`
	Status           string  `json:"status"`
	StatusLabel      string  `json:"statusLabel"`
	Progress         float64 `json:"progress"`
	WeavingDate      string  `json:"weavingDate"`
	DyeingDate       string  `json:"dyeingDate"`
	SewingDate       string  `json:"sewingDate"`
	ShippingDate     string  `json:"shippingDate"`
	ShippingMethod   string  `json:"shippingMethod"`
	ShippingDestName string  `json:"shippingDestName"`
	Note             string  `json:"note"`
	LastUpdated      string  `json:"lastUpdated"`
}

type OrderResponse struct {
	TraceID string   `json:"traceId"`
	Order   OrderDTO `json:"order"`
}

type ListOrdersResponse struct {
	TraceID string     `json:"traceId"`
	Total   int        `json:"total"`
	Orders  []OrderDTO `json:"orders"`
}

type ItemFailureDTO struct {
	OrderID string `json:"orderId,omitempty"`
	Row     int    `json:"row,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type BatchResponse struct {
	TraceID   string           `json:"traceId"`
	Status    string           `json:"status"`
	Succeeded int              `json:"succeeded"`
	Failures  []ItemFailureDTO `json:"failures"`
	Timestamp time.Time        `json:"timestamp"`
}

type ImportWarningDTO struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

type ImportResponse struct {
	BatchResponse
	Skipped        int                `json:"skipped"`
	Warnings       []ImportWarningDTO `json:"warnings"`
	IgnoredColumns []string           `json:"ignoredColumns"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
