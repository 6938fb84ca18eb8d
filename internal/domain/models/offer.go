package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TimeUnit enumerates the delivery-time units marketplaces publish.
type TimeUnit string

const (
	UnitHours   TimeUnit = "Hours"
	UnitHour    TimeUnit = "Hour"
	UnitMinutes TimeUnit = "Minutes"
	UnitMinute  TimeUnit = "Minute"
)

// Seconds converts one unit into its duration in seconds.
func (u TimeUnit) Seconds() (int64, bool) {
	switch u {
	case UnitHours, UnitHour:
		return 3600, true
	case UnitMinutes, UnitMinute:
		return 60, true
	default:
		return 0, false
	}
}

// DeliveryTime is a marketplace delivery promise, comparable across units.
type DeliveryTime struct {
	Value int
	Unit  TimeUnit
}

var deliveryTimePattern = regexp.MustCompile(`^(\d+)\s*([A-Za-z]+)$`)

// ParseDeliveryTime converts listing text like "2 Hours" or "30 Minutes"
// into a DeliveryTime.
func ParseDeliveryTime(text string) (DeliveryTime, error) {
	match := deliveryTimePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return DeliveryTime{}, NewParseError("delivery_time", text, "expected \"<value> <unit>\"")
	}

	var value int
	if _, err := fmt.Sscanf(match[1], "%d", &value); err != nil {
		return DeliveryTime{}, NewParseError("delivery_time", text, "non-numeric value")
	}

	var unit TimeUnit
	switch strings.ToLower(match[2]) {
	case "hour":
		unit = UnitHour
	case "hours", "h":
		unit = UnitHours
	case "minute":
		unit = UnitMinute
	case "minutes", "min", "m":
		unit = UnitMinutes
	default:
		return DeliveryTime{}, NewParseError("delivery_time", text, "unknown unit")
	}

	return DeliveryTime{Value: value, Unit: unit}, nil
}

// Seconds normalizes the delivery time for cross-unit comparison.
func (d DeliveryTime) Seconds() int64 {
	perUnit, _ := d.Unit.Seconds()
	return int64(d.Value) * perUnit
}

// LongerThan reports whether d promises a slower delivery than other.
func (d DeliveryTime) LongerThan(other DeliveryTime) bool {
	return d.Seconds() > other.Seconds()
}

func (d DeliveryTime) String() string {
	return fmt.Sprintf("%d %s", d.Value, d.Unit)
}

// Seller identifies one merchant on one source.
type Seller struct {
	Name          string
	FeedbackCount int
}

// Offer is a single seller listing, normalized so prices are always
// expressed per unit regardless of the listed lot size.
type Offer struct {
	OfferID      string
	Server       string
	Seller       Seller
	DeliveryTime *DeliveryTime
	MinUnit      int
	MinStock     int
	Stock        int
	Quantity     int
	PricePerUnit decimal.Decimal
}

// RawOffer is a listing exactly as the fetch layer hands it over, before
// unit normalization and delivery-time parsing.
type RawOffer struct {
	OfferID      string `json:"offer_id"`
	Server       string `json:"server"`
	SellerName   string `json:"seller_name"`
	Feedback     int    `json:"feedback"`
	DeliveryText string `json:"delivery_time"`
	MinUnit      int    `json:"min_unit"`
	MinStock     int    `json:"min_stock"`
	Stock        int    `json:"stock"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
}
