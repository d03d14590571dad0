package chaosconfig

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/cockroachdb/errors"
)

// ssmClient is the subset of *ssm.Client this package calls, so tests
// can substitute a fake without standing up real AWS credentials.
type ssmClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParamStoreBackend fetches configuration from an AWS Systems Manager
// Parameter Store parameter, decrypting SecureString values in transit.
type ParamStoreBackend struct {
	ParameterName string

	// Client is overridable for tests; a real client is constructed
	// lazily from the ambient AWS configuration otherwise.
	Client ssmClient
}

func (b *ParamStoreBackend) Name() string { return "paramstore" }

func (b *ParamStoreBackend) client(ctx context.Context) (ssmClient, error) {
	if b.Client != nil {
		return b.Client, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}
	return ssm.NewFromConfig(cfg), nil
}

func (b *ParamStoreBackend) Fetch(ctx context.Context) ([]byte, error) {
	client, err := b.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(b.ParameterName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetching parameter store configuration")
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, errors.New("parameter store returned no value")
	}
	return []byte(*out.Parameter.Value), nil
}
