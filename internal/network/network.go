// Package network resolves the VPC the database is placed in.
//
// The VPC handle comes from static context values when all of them are set,
// then from the lookup cache, and finally from read-only EC2 lookups of the
// account's single non-default VPC.
package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"

	"github.com/lex00/webfocus-db/internal/contextstore"
)

// Network is the VPC handle the stack is built against.
type Network struct {
	VpcID             string   `json:"vpcId"`
	CidrBlock         string   `json:"vpcCidrBlock"`
	IsolatedSubnetIDs []string `json:"isolatedSubnetIds"`
}

// EC2API is the subset of the EC2 client used for VPC lookups.
type EC2API interface {
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeRouteTables(ctx context.Context, params *ec2.DescribeRouteTablesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error)
}

// STSAPI is the subset of the STS client used to find the account.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ErrLookupDisabled is returned when the network is not in context and lookups are off.
var ErrLookupDisabled = errors.New("network not found in context and lookups are disabled")

// Resolver resolves the Network for a set of Settings.
type Resolver struct {
	ec2       EC2API
	sts       STSAPI
	cacheFile string
	logger    zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEC2Client sets a custom EC2 client (for testing).
func WithEC2Client(client EC2API) Option {
	return func(r *Resolver) {
		r.ec2 = client
	}
}

// WithSTSClient sets a custom STS client (for testing).
func WithSTSClient(client STSAPI) Option {
	return func(r *Resolver) {
		r.sts = client
	}
}

// WithCacheFile persists looked-up networks to the context cache file.
func WithCacheFile(path string) Option {
	return func(r *Resolver) {
		r.cacheFile = path
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver. AWS clients are created on first lookup
// unless supplied as options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromKeys builds a Network from static context values.
func FromKeys(keys contextstore.NetworkKeys) Network {
	return Network{
		VpcID:             keys.VpcID,
		CidrBlock:         keys.VpcCidr,
		IsolatedSubnetIDs: append([]string(nil), keys.IsolatedSubnetIDs...),
	}
}

// CacheKey is the context cache key for the VPC lookup of an account and region.
func CacheKey(account, region string) string {
	return fmt.Sprintf("vpc-provider:account=%s:filter.isDefault=false:region=%s", account, region)
}

// Resolve returns the network for settings. It may fill in settings.Account
// from STS when lookups are enabled and the account is not set.
func (r *Resolver) Resolve(ctx context.Context, settings *contextstore.Settings, store *contextstore.Store) (Network, error) {
	if settings.Network.Static() {
		r.logger.Debug().Str("vpc", settings.Network.VpcID).Msg("using network from context")
		return FromKeys(settings.Network), nil
	}

	if settings.Account == "" && settings.Lookup {
		account, err := r.Account(ctx, settings.Region)
		if err != nil {
			return Network{}, err
		}
		settings.Account = account
	}

	key := CacheKey(settings.Account, settings.Region)
	if store != nil {
		if cached, ok := store.Lookup(key); ok {
			network, err := decodeCached(cached)
			if err != nil {
				return Network{}, fmt.Errorf("context cache entry %s: %w", key, err)
			}
			r.logger.Debug().Str("vpc", network.VpcID).Msg("using cached network")
			return network, nil
		}
	}

	if !settings.Lookup {
		return Network{}, fmt.Errorf("%w: set %s, %s and %s or pass --lookup", ErrLookupDisabled,
			contextstore.KeyVpcID, contextstore.KeyVpcCidr, contextstore.KeyIsolatedSubnetIDs)
	}

	network, err := r.Lookup(ctx, settings.Region)
	if err != nil {
		return Network{}, err
	}

	if r.cacheFile != "" {
		if err := contextstore.WriteCache(r.cacheFile, key, network); err != nil {
			return Network{}, err
		}
		r.logger.Info().Str("file", r.cacheFile).Str("key", key).Msg("cached network lookup")
	}
	return network, nil
}

// Account returns the caller's account id.
func (r *Resolver) Account(ctx context.Context, region string) (string, error) {
	if r.sts == nil {
		cfg, err := loadConfig(ctx, region)
		if err != nil {
			return "", err
		}
		r.sts = sts.NewFromConfig(cfg)
	}

	out, err := r.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// Lookup finds the single non-default VPC and its isolated subnets.
func (r *Resolver) Lookup(ctx context.Context, region string) (Network, error) {
	if r.ec2 == nil {
		cfg, err := loadConfig(ctx, region)
		if err != nil {
			return Network{}, err
		}
		r.ec2 = ec2.NewFromConfig(cfg)
	}

	r.logger.Info().Str("region", region).Msg("looking up vpc")
	return lookupVpc(ctx, r.ec2)
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func decodeCached(v any) (Network, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Network{}, fmt.Errorf("unexpected %T", v)
	}

	var network Network
	network.VpcID, _ = m["vpcId"].(string)
	network.CidrBlock, _ = m["vpcCidrBlock"].(string)
	if ids, ok := m["isolatedSubnetIds"].([]any); ok {
		for _, id := range ids {
			if s, ok := id.(string); ok {
				network.IsolatedSubnetIDs = append(network.IsolatedSubnetIDs, s)
			}
		}
	}

	if network.VpcID == "" || network.CidrBlock == "" || len(network.IsolatedSubnetIDs) == 0 {
		return Network{}, errors.New("incomplete network entry")
	}
	return network, nil
}
