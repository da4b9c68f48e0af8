package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// Config is the storage section of the configuration file.
type Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	IAMRole         string `yaml:"iam_role"`
}

// Base returns the configured bucket and prefix as a location.
func (c Config) Base() whetl.Location {
	return whetl.Location{Bucket: c.Bucket, Prefix: c.Prefix}
}

func (c Config) hasStaticKeys() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Credentials authorize the warehouse to read or write object storage.
// Either IAMRole or the key pair is set.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	IAMRole         string
}

// IsZero reports whether no credential is set.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

// Clause renders the value of a CREDENTIALS clause:
// aws_iam_role=<arn> or aws_access_key_id=…;aws_secret_access_key=…[;token=…].
func (c Credentials) Clause() (string, error) {
	if c.IAMRole != "" {
		return "aws_iam_role=" + c.IAMRole, nil
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return "", fmt.Errorf("storage credentials need an iam_role or an access key pair: %w", whetl.ErrInvalidConfig)
	}
	clause := "aws_access_key_id=" + c.AccessKeyID + ";aws_secret_access_key=" + c.SecretAccessKey
	if c.SessionToken != "" {
		clause += ";token=" + c.SessionToken
	}
	if strings.ContainsAny(clause, "'\\") {
		return "", fmt.Errorf("storage credentials contain quote or backslash characters: %w", whetl.ErrInvalidConfig)
	}
	return clause, nil
}

// String hides the secret parts.
func (c Credentials) String() string {
	switch {
	case c.IAMRole != "":
		return "iam_role " + c.IAMRole
	case c.AccessKeyID != "":
		return "access key " + c.AccessKeyID
	default:
		return "no credentials"
	}
}

// AWSConfig loads an aws.Config for cfg. Static keys from the configuration
// take precedence over the default credential chain.
func AWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.hasStaticKeys() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// ResolveCredentials returns the credentials to embed in COPY and UNLOAD.
// An IAM role wins, then static keys, then whatever the AWS default chain
// (environment, shared profile, instance role) yields.
func ResolveCredentials(ctx context.Context, cfg Config) (Credentials, error) {
	if cfg.IAMRole != "" {
		return Credentials{IAMRole: cfg.IAMRole}, nil
	}

	var provider aws.CredentialsProvider
	if cfg.hasStaticKeys() {
		provider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	} else {
		awsCfg, err := AWSConfig(ctx, cfg)
		if err != nil {
			return Credentials{}, err
		}
		provider = awsCfg.Credentials
	}
	if provider == nil {
		return Credentials{}, fmt.Errorf("no AWS credentials available: %w", whetl.ErrInvalidConfig)
	}

	return retrieve(ctx, provider)
}

func retrieve(ctx context.Context, provider aws.CredentialsProvider) (Credentials, error) {
	creds, err := provider.Retrieve(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}
	return Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}, nil
}
