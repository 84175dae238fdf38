// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the slice of the SES client the mailer needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Mailer sends plain-text emails through SES.
type Mailer struct {
	client SESAPI
	from   string
}

func NewMailer(ctx context.Context, region, from string) (*Mailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewMailerWithClient(ses.NewFromConfig(cfg), from), nil
}

func NewMailerWithClient(client SESAPI, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// SendText returns the SES message id.
func (m *Mailer) SendText(ctx context.Context, to, subject, body string) (string, error) {
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
