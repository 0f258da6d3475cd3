package service

import (
	"math"
	"strconv"
	"strings"

	"airsense_console/internal/gateway"
	"airsense_console/internal/models"
)

// TriggerForm is the user's input for a new trigger. Threshold is a pointer
// so that "not entered" differs from zero.
type TriggerForm struct {
	Name      string          `json:"name"`
	PostURL   string          `json:"postUrl"`
	Threshold *float64        `json:"threshold"`
	Parameter models.Metric   `json:"parameter"`
	Operator  models.Operator `json:"operator"`
}

// Validate requires all five fields. Parameter and operator must be known values.
func (f TriggerForm) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.PostURL) == "" {
		missing = append(missing, "postUrl")
	}
	if f.Threshold == nil || !finite(*f.Threshold) {
		missing = append(missing, "threshold")
	}
	if !f.Parameter.Valid() {
		missing = append(missing, "parameter")
	}
	if !f.Operator.Valid() {
		missing = append(missing, "operator")
	}
	if len(missing) > 0 {
		return &gateway.ValidationError{Fields: missing}
	}
	return nil
}

// ParseThreshold turns raw form input into a threshold. Blank, malformed or
// non-finite input yields nil.
func ParseThreshold(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return nil
	}
	return &v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
