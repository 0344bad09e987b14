package artifact

// HardwareScores is the per-hardware deployability breakdown produced by
// the size metric.
type HardwareScores struct {
	RaspberryPi float64 `json:"raspberry_pi"`
	JetsonNano  float64 `json:"jetson_nano"`
	DesktopPC   float64 `json:"desktop_pc"`
	AWSServer   float64 `json:"aws_server"`
}

// Rating is the flat record of metric scores and latencies for an
// artifact, plus the weighted composite net score. Latencies are integer
// milliseconds.
type Rating struct {
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`

	BusFactor               float64        `json:"bus_factor"`
	BusFactorLatency        int64          `json:"bus_factor_latency"`
	CodeQuality             float64        `json:"code_quality"`
	CodeQualityLatency      int64          `json:"code_quality_latency"`
	RampUpTime              float64        `json:"ramp_up_time"`
	RampUpTimeLatency       int64          `json:"ramp_up_time_latency"`
	License                 float64        `json:"license"`
	LicenseLatency          int64          `json:"license_latency"`
	PerformanceClaims       float64        `json:"performance_claims"`
	PerformanceClaimsLat    int64          `json:"performance_claims_latency"`
	DatasetAndCodeScore     float64        `json:"dataset_and_code_score"`
	DatasetAndCodeScoreLat  int64          `json:"dataset_and_code_score_latency"`
	DatasetQuality          float64        `json:"dataset_quality"`
	DatasetQualityLatency   int64          `json:"dataset_quality_latency"`
	Reviewedness            float64        `json:"reviewedness"`
	ReviewednessLatency     int64          `json:"reviewedness_latency"`
	Reproducibility         float64        `json:"reproducibility"`
	ReproducibilityLatency  int64          `json:"reproducibility_latency"`
	TreeScore               float64        `json:"tree_score"`
	TreeScoreLatency        int64          `json:"tree_score_latency"`
	SizeScore               HardwareScores `json:"size_score"`
	SizeScoreLatency        int64          `json:"size_score_latency"`
	NetScore                float64        `json:"net_score"`
	NetScoreLatency         int64          `json:"net_score_latency"`
}

// Set assigns a named scalar metric result to its rating field. Unknown
// names are ignored so that new metrics degrade gracefully.
func (r *Rating) Set(name string, score float64, latency int64) {
	switch name {
	case "bus_factor":
		r.BusFactor, r.BusFactorLatency = score, latency
	case "code_quality":
		r.CodeQuality, r.CodeQualityLatency = score, latency
	case "ramp_up_time":
		r.RampUpTime, r.RampUpTimeLatency = score, latency
	case "license":
		r.License, r.LicenseLatency = score, latency
	case "performance_claims":
		r.PerformanceClaims, r.PerformanceClaimsLat = score, latency
	case "dataset_and_code_score":
		r.DatasetAndCodeScore, r.DatasetAndCodeScoreLat = score, latency
	case "dataset_quality":
		r.DatasetQuality, r.DatasetQualityLatency = score, latency
	case "reviewedness":
		r.Reviewedness, r.ReviewednessLatency = score, latency
	case "reproducibility":
		r.Reproducibility, r.ReproducibilityLatency = score, latency
	case "tree_score":
		r.TreeScore, r.TreeScoreLatency = score, latency
	}
}
