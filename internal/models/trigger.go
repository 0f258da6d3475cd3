package models

// Operator compares a reading against a trigger threshold.
type Operator string

const (
	OperatorGT  Operator = "gt"
	OperatorGTE Operator = "gte"
	OperatorLT  Operator = "lt"
	OperatorLTE Operator = "lte"
)

// Valid reports whether o is a supported comparison.
func (o Operator) Valid() bool {
	switch o {
	case OperatorGT, OperatorGTE, OperatorLT, OperatorLTE:
		return true
	}
	return false
}

// Trigger is an alert rule: when Parameter compared by Operator against
// Threshold holds, the backend posts to PostURL.
type Trigger struct {
	ID        string   `json:"_id,omitempty"`
	DeviceID  string   `json:"deviceId,omitempty"`
	Name      string   `json:"name"`
	PostURL   string   `json:"postUrl"`
	Threshold float64  `json:"threshold"`
	Parameter Metric   `json:"parameter"`
	Operator  Operator `json:"operator"`
}
