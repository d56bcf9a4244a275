// Package secretstatus reports whether the master-credential secret of a
// deployment already exists in Secrets Manager.
package secretstatus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/rs/zerolog"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// Status describes a secret as seen by Secrets Manager.
type Status struct {
	Name             string     `json:"name"`
	Exists           bool       `json:"exists"`
	ARN              string     `json:"arn,omitempty"`
	KmsKeyID         string     `json:"kms_key_id,omitempty"`
	RotationEnabled  bool       `json:"rotation_enabled"`
	LastChangedDate  *time.Time `json:"last_changed_date,omitempty"`
	PendingDeletion  bool       `json:"pending_deletion"`
	DeletionDate     *time.Time `json:"deletion_date,omitempty"`
	VersionStages    []string   `json:"version_stages,omitempty"`
	ManagedByService string     `json:"owning_service,omitempty"`
}

// Checker looks up secret status.
type Checker struct {
	client SecretsManagerAPI
	region string
	logger zerolog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithClient sets a custom Secrets Manager client (for testing).
func WithClient(client SecretsManagerAPI) Option {
	return func(c *Checker) {
		c.client = client
	}
}

// WithRegion sets the region used when the client is created from the default config.
func WithRegion(region string) Option {
	return func(c *Checker) {
		c.region = region
	}
}

// WithLogger sets the checker logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker. Without WithClient the client is built from
// the default AWS config.
func NewChecker(ctx context.Context, opts ...Option) (*Checker, error) {
	c := &Checker{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		var cfgOpts []func(*config.LoadOptions) error
		if c.region != "" {
			cfgOpts = append(cfgOpts, config.WithRegion(c.region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		c.client = secretsmanager.NewFromConfig(cfg)
	}
	return c, nil
}

// Check describes the named secret. A missing secret is not an error.
func (c *Checker) Check(ctx context.Context, name string) (Status, error) {
	c.logger.Debug().Str("secret", name).Msg("describing secret")

	out, err := c.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		if isNotFoundError(err) {
			return Status{Name: name}, nil
		}
		return Status{}, fmt.Errorf("describing secret %s: %w", name, err)
	}

	status := Status{
		Name:             name,
		Exists:           true,
		ARN:              aws.ToString(out.ARN),
		KmsKeyID:         aws.ToString(out.KmsKeyId),
		RotationEnabled:  aws.ToBool(out.RotationEnabled),
		LastChangedDate:  out.LastChangedDate,
		PendingDeletion:  out.DeletedDate != nil,
		DeletionDate:     out.DeletedDate,
		ManagedByService: aws.ToString(out.OwningService),
	}

	for _, stages := range out.VersionIdsToStages {
		status.VersionStages = append(status.VersionStages, stages...)
	}
	sort.Strings(status.VersionStages)

	return status, nil
}

func isNotFoundError(err error) bool {
	var resourceNotFound *types.ResourceNotFoundException
	return errors.As(err, &resourceNotFound)
}
