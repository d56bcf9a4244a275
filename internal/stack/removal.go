package stack

import webfocus "github.com/lex00/webfocus-db"

// Removal modes accepted in the removalPolicy context value.
const (
	RemovalSnapshot = "SNAPSHOT"
	RemovalRetain   = "RETAIN"
	RemovalDestroy  = "DESTROY"
)

// MapRemovalPolicy maps a removalPolicy mode to a CloudFormation policy.
// Unrecognized modes, including the empty string, destroy the resource.
func MapRemovalPolicy(mode string) string {
	switch mode {
	case RemovalSnapshot:
		return webfocus.PolicySnapshot
	case RemovalRetain:
		return webfocus.PolicyRetain
	default:
		return webfocus.PolicyDelete
	}
}

// supportingPolicy is the policy for resources that must outlive a retained
// instance. Snapshot is only meaningful on the instance itself.
func supportingPolicy(instancePolicy string) string {
	if instancePolicy == webfocus.PolicyRetain {
		return webfocus.PolicyRetain
	}
	return webfocus.PolicyDelete
}
