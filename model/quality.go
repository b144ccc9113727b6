package model

// Quality buckets a received signal strength into coverage classes.
type Quality int

const (
	QualityNone Quality = iota
	QualityPoor
	QualityFair
	QualityGood
	QualityExcellent
)

// Fixed classification thresholds in dBm. These are deliberately not part
// of Config: every consumer of a coverage field must agree on what "fair"
// means.
const (
	ThresholdExcellentDBm = -30.0
	ThresholdGoodDBm      = -50.0
	ThresholdFairDBm      = -70.0
	ThresholdPoorDBm      = -85.0
)

// ClassifyQuality maps a received signal strength in dBm to a Quality bucket.
func ClassifyQuality(signalDBm float64) Quality {
	switch {
	case signalDBm >= ThresholdExcellentDBm:
		return QualityExcellent
	case signalDBm >= ThresholdGoodDBm:
		return QualityGood
	case signalDBm >= ThresholdFairDBm:
		return QualityFair
	case signalDBm >= ThresholdPoorDBm:
		return QualityPoor
	default:
		return QualityNone
	}
}

func (q Quality) String() string {
	switch q {
	case QualityExcellent:
		return "excellent"
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	case QualityPoor:
		return "poor"
	default:
		return "none"
	}
}
