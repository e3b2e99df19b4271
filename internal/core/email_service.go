package core

import (
	"context"
	"fmt"
	"strings"

	"attendance.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DecisionNotice is what an employee is told about a decided correction.
type DecisionNotice struct {
	Name      string
	WorkDate  string
	Status    string
	AdminNote string
}

type EmailService interface {
	SendDecisionNotice(ctx context.Context, to string, notice DecisionNotice) error
}

// SESClient defines the part of the AWS SES client used to send mail.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
}

func NewSESEmailService(client SESClient, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendDecisionNotice(ctx context.Context, to string, notice DecisionNotice) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if userID := telemetry.GetUserIDFromContext(ctx); userID != "" {
		span.SetAttributes(attribute.String("app.userId", userID))
	}

	subject, body := renderDecisionNotice(notice)
	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderDecisionNotice(n DecisionNotice) (subject, body string) {
	subject = fmt.Sprintf("Attendance correction for %s %s", n.WorkDate, n.Status)

	var b strings.Builder
	greeting := "Hello"
	if n.Name != "" {
		greeting += " " + n.Name
	}
	fmt.Fprintf(&b, "%s,\n\nYour correction request for %s has been %s.", greeting, n.WorkDate, n.Status)
	if n.AdminNote != "" {
		fmt.Fprintf(&b, "\n\nNote from the administrator: %s", n.AdminNote)
	}
	return subject, b.String()
}
