// Package awssecrets loads sync credentials from AWS Secrets Manager.
//
// The secret must be a JSON object using the keys of config.Credentials, e.g.
//
//	{"toggl_api_token": "...", "notion_token": "secret_..."}
//
// Secret values are never logged.
package awssecrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	"toggl-notion-sync/internal/config"
)

var (
	ErrNotFound     = errors.New("secret not found")
	ErrAccessDenied = errors.New("access denied to secret")
	ErrEmptySecret  = errors.New("secret has no value")
)

// ManagerAPI is the subset of the Secrets Manager client the loader uses.
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// Loader reads credentials from a single secret.
type Loader struct {
	api ManagerAPI
	log *slog.Logger
}

// NewLoader builds a loader from the default AWS configuration chain.
func NewLoader(ctx context.Context, log *slog.Logger) (*Loader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewLoaderWithAPI(secretsmanager.NewFromConfig(cfg), log), nil
}

// NewLoaderWithAPI builds a loader on an existing client.
func NewLoaderWithAPI(api ManagerAPI, log *slog.Logger) *Loader {
	return &Loader{api: api, log: log}
}

// Credentials fetches and decodes the secret identified by secretID.
func (l *Loader) Credentials(ctx context.Context, secretID string) (config.Credentials, error) {
	var creds config.Credentials
	if secretID == "" {
		return creds, errors.New("secret id is required")
	}
	l.log.Debug("fetching credentials secret", slog.String("secret_id", secretID))

	out, err := l.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return creds, classify(secretID, err)
	}

	var raw []byte
	switch {
	case out.SecretString != nil && *out.SecretString != "":
		raw = []byte(aws.ToString(out.SecretString))
	case len(out.SecretBinary) > 0:
		raw = out.SecretBinary
	default:
		return creds, fmt.Errorf("%s: %w", secretID, ErrEmptySecret)
	}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return creds, fmt.Errorf("decode secret %s: %w", secretID, err)
	}
	l.log.Info("loaded credentials from secrets manager", slog.String("secret_id", secretID))
	return creds, nil
}

func classify(secretID string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return fmt.Errorf("%s: %w", secretID, ErrNotFound)
		case "AccessDeniedException":
			return fmt.Errorf("%s: %w", secretID, ErrAccessDenied)
		}
	}
	return fmt.Errorf("get secret %s: %w", secretID, err)
}
