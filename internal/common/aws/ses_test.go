package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func TestMailer_SendText(t *testing.T) {
	client := &mockSES{}
	mailer := NewMailerWithClient(client, "noreply@example.com")

	id, err := mailer.SendText(context.Background(), "ana@example.com", "Application received", "Thanks")

	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ana@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Application received", aws.ToString(client.input.Message.Subject.Data))
	assert.Equal(t, "Thanks", aws.ToString(client.input.Message.Body.Text.Data))
}

func TestMailer_SendTextError(t *testing.T) {
	mailer := NewMailerWithClient(&mockSES{err: errors.New("throttled")}, "noreply@example.com")

	_, err := mailer.SendText(context.Background(), "ana@example.com", "s", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
