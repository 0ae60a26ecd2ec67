package burnrate

import "time"

// ModelBurnRate holds cost data for a single model.
type ModelBurnRate struct {
	Model      string
	Calls      int
	HourlyRate float64
	TotalCost  float64
}

// BurnRate holds the cost figures shown by the cost panel.
type BurnRate struct {
	// TotalCost is BaselineCost plus SessionCost.
	TotalCost   float64
	SessionCost float64 // spend observed on the channel since start
	Calls       int     // llm_end frames folded

	HourlyRate        float64
	Trend             TrendDirection
	PerModel          []ModelBurnRate
	DailyProjection   float64 // HourlyRate * 24
	MonthlyProjection float64 // HourlyRate * 720

	BaselineCost   float64
	BaselineTokens int64
	BaselineDays   int
}

// Baseline is historical spend reported by the backend's usage endpoint.
type Baseline struct {
	TotalCost   float64
	TotalTokens int64
	Days        int
}

// TrendDirection indicates rate change direction.
type TrendDirection int

const (
	TrendFlat TrendDirection = iota
	TrendUp
	TrendDown
)

// String returns a human-readable representation of the trend.
func (t TrendDirection) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "flat"
	}
}

// Arrow returns a one-rune trend marker.
func (t TrendDirection) Arrow() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// RateColor maps to display color based on thresholds.
type RateColor int

const (
	ColorGreen RateColor = iota
	ColorYellow
	ColorRed
)

// String returns a human-readable name for the color.
func (c RateColor) String() string {
	switch c {
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	default:
		return "unknown"
	}
}

// Thresholds configures the cost-rate color boundaries in USD per hour.
type Thresholds struct {
	GreenBelow  float64 // hourly rate below this is green
	YellowBelow float64 // hourly rate below this (but >= GreenBelow) is yellow
}

// DefaultThresholds returns the default color thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GreenBelow:  0.50,
		YellowBelow: 2.00,
	}
}

// costSample is the cumulative session cost at a point in time.
type costSample struct {
	cost float64
	at   time.Time
}
