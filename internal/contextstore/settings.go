package contextstore

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables read at the entry point.
const (
	EnvDefaultRegion  = "CDK_DEFAULT_REGION"
	EnvDefaultAccount = "CDK_DEFAULT_ACCOUNT"
)

// Settings is the resolved configuration handed to every builder.
type Settings struct {
	// Env is the normalized awsEnv.
	Env      string
	Instance string
	// Account and Region are not validated; an empty value surfaces at deploy time.
	Account    string
	Region     string
	Deployment DeploymentContext
	Network    NetworkKeys
	// Lookup enables read-only AWS lookups for values not given statically.
	Lookup bool
}

// NetworkKeys are the optional static network values from context.
type NetworkKeys struct {
	VpcID             string
	VpcCidr           string
	IsolatedSubnetIDs []string
}

// Static reports whether every network value was supplied.
func (n NetworkKeys) Static() bool {
	return n.VpcID != "" && n.VpcCidr != "" && len(n.IsolatedSubnetIDs) > 0
}

// Options configures Load.
type Options struct {
	Sources
	Lookup bool
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load opens the store and resolves Settings from it.
func Load(opts Options) (*Settings, *Store, error) {
	store, err := Open(opts.Sources)
	if err != nil {
		return nil, nil, err
	}
	settings, err := store.Settings(opts.Lookup, opts.Getenv)
	if err != nil {
		return nil, store, err
	}
	return settings, store, nil
}

// Settings resolves awsEnv, its profile, and instance, in that order.
func (s *Store) Settings(lookup bool, getenv func(string) string) (*Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	env, err := s.Resolve(KeyAwsEnv)
	if err != nil {
		return nil, err
	}

	deployment, err := s.Deployment(env)
	if err != nil {
		return nil, err
	}

	instance, err := s.Resolve(KeyInstance)
	if err != nil {
		return nil, err
	}

	network, err := s.networkKeys()
	if err != nil {
		return nil, err
	}

	return &Settings{
		Env:        env,
		Instance:   instance,
		Account:    getenv(EnvDefaultAccount),
		Region:     getenv(EnvDefaultRegion),
		Deployment: deployment,
		Network:    network,
		Lookup:     lookup,
	}, nil
}

func (s *Store) networkKeys() (NetworkKeys, error) {
	var keys NetworkKeys
	if v, err := s.Resolve(KeyVpcID); err == nil {
		keys.VpcID = v
	}
	if v, err := s.Resolve(KeyVpcCidr); err == nil {
		keys.VpcCidr = v
	}

	raw, ok := s.Lookup(KeyIsolatedSubnetIDs)
	if !ok {
		return keys, nil
	}
	switch v := raw.(type) {
	case string:
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				keys.IsolatedSubnetIDs = append(keys.IsolatedSubnetIDs, id)
			}
		}
	case []any:
		for _, id := range v {
			str, ok := id.(string)
			if !ok {
				return keys, fmt.Errorf("context value %q: subnet id %v is not a string", KeyIsolatedSubnetIDs, id)
			}
			keys.IsolatedSubnetIDs = append(keys.IsolatedSubnetIDs, str)
		}
	default:
		return keys, fmt.Errorf("context value %q must be a list or comma-separated string", KeyIsolatedSubnetIDs)
	}
	return keys, nil
}
