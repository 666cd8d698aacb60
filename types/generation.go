package types

import "fmt"

// Generation is the opaque cluster-topology version token that gates the
// checker's aggregate recompute.
//
// Callers must supply a new Generation whenever the topology changes in a way
// that affects per-topic partition counts; as long as the token is unchanged,
// the checker serves its cached aggregate view and stale partition counts may
// be used. Generation is a comparable struct, so tokens are compared with ==.
type Generation struct {
	// Cluster is the cluster metadata version.
	Cluster int64 `json:"cluster"`

	// Model is the monitored-model version within the cluster generation.
	Model int64 `json:"model"`
}

// String returns a "[cluster, model]" form for logging.
func (g Generation) String() string {
	return fmt.Sprintf("[%d, %d]", g.Cluster, g.Model)
}
