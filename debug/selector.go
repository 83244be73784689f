package debug

type Tselector string

// ALWAYS
const (
	ALWAYS Tselector = "ALWAYS"
	ERROR            = "ERROR"
	NEVER            = "NEVER"
)

// ERR
const (
	ERR Tselector = "_ERR"
)

// Sweep
const (
	SWEEP     Tselector = "SWEEP"
	SWEEP_ERR           = SWEEP + ERR
	RUNNER              = "RUNNER"
	PROGRESS            = "PROGRESS"
)

// Cluster
const (
	CLUSTER     Tselector = "CLUSTER"
	CLUSTER_ERR           = CLUSTER + ERR
	NODES                 = "NODES"
)

// Counter client
const (
	COUNTERCLNT     Tselector = "COUNTERCLNT"
	COUNTERCLNT_ERR           = COUNTERCLNT + ERR
	RETRY                     = "RETRY"
)

// Outputs
const (
	RESULTS Tselector = "RESULTS"
	CHART             = "CHART"
	CONFIG            = "CONFIG"
)

// Tests
const (
	TEST Tselector = "TEST"
)
