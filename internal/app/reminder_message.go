package app

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"subscription_tracker/internal/domain/subscription"
)

const reminderDateFormat = "January 2, 2006"

// ReminderMessage is a rendered reminder email.
type ReminderMessage struct {
	Subject   string
	PlainBody string
	RichBody  string
}

type reminderView struct {
	UserName         string
	SubscriptionName string
	RenewalDate      string
	Amount           string
	Currency         string
	BillingCycle     string
	Category         string
	Website          string
	DaysUntil        int
	DaysPhrase       string
}

var reminderHTML = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Subscription Renewal Reminder</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f4f4f4;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 20px 0; text-align: center; background-color: #6366f1;">
                <h1 style="margin: 0; color: #ffffff; font-size: 24px;">Subscription Tracker</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 40px 20px;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px;">
                    <tr>
                        <td style="padding: 40px 30px;">
                            <h2 style="margin: 0 0 20px 0; color: #333333; font-size: 24px;">&#128276; Upcoming Subscription Renewal</h2>
                            <p style="color: #666666; font-size: 16px;">Hello {{.UserName}},</p>
                            <p style="color: #666666; font-size: 16px;">This is a reminder that your subscription <strong>{{.SubscriptionName}}</strong> will renew soon.</p>
                            <table role="presentation" style="width: 100%; margin: 30px 0; background-color: #f9fafb; border-radius: 6px;">
                                <tr><td style="padding: 8px 20px; color: #666666;">Subscription:</td><td style="padding: 8px 0; font-weight: bold;">{{.SubscriptionName}}</td></tr>
                                <tr><td style="padding: 8px 20px; color: #666666;">Renewal Date:</td><td style="padding: 8px 0; font-weight: bold;">{{.RenewalDate}}</td></tr>
                                <tr><td style="padding: 8px 20px; color: #666666;">Amount:</td><td style="padding: 8px 0; font-weight: bold;">{{.Currency}} {{.Amount}}</td></tr>
                                <tr><td style="padding: 8px 20px; color: #666666;">Billing Cycle:</td><td style="padding: 8px 0; font-weight: bold;">{{.BillingCycle}}</td></tr>
                                {{- if .Category}}
                                <tr><td style="padding: 8px 20px; color: #666666;">Category:</td><td style="padding: 8px 0; font-weight: bold;">{{.Category}}</td></tr>
                                {{- end}}
                                {{- if gt .DaysUntil 0}}
                                <tr><td style="padding: 8px 20px; color: #666666;">Days Until Renewal:</td><td style="padding: 8px 0; color: #e67e22; font-weight: bold;">{{.DaysPhrase}}</td></tr>
                                {{- else}}
                                <tr><td style="padding: 8px 20px; color: #666666;">Status:</td><td style="padding: 8px 0; color: #e74c3c; font-weight: bold;">Renews today!</td></tr>
                                {{- end}}
                            </table>
                            {{- if .Website}}
                            <p style="margin: 20px 0; text-align: center;">
                                <a href="{{.Website}}" style="display: inline-block; padding: 12px 30px; background-color: #6366f1; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: bold;">Manage Subscription</a>
                            </p>
                            {{- end}}
                            <p style="margin: 30px 0 0 0; color: #999999; font-size: 12px; text-align: center;">
                                This is an automated reminder from Subscription Tracker.<br>
                                You can manage your reminder preferences in your account settings.
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`))

// RenderReminder builds the subject and both bodies of a renewal reminder.
// renewalDate is the parsed calendar date of sub.NextRenewalDate.
func RenderReminder(sub *subscription.Subscription, recipientName string, renewalDate time.Time, daysUntil int) (*ReminderMessage, error) {
	name := sub.Name
	if strings.TrimSpace(name) == "" {
		name = "Subscription"
	}
	if strings.TrimSpace(recipientName) == "" {
		recipientName = "User"
	}
	currency := sub.Currency
	if currency == "" {
		currency = subscription.DefaultCurrency
	}

	view := reminderView{
		UserName:         recipientName,
		SubscriptionName: name,
		RenewalDate:      renewalDate.Format(reminderDateFormat),
		Amount:           fmt.Sprintf("%.2f", sub.Amount),
		Currency:         currency,
		BillingCycle:     sub.BillingCycle.Label(),
		Category:         sub.Category,
		Website:          sub.Website,
		DaysUntil:        daysUntil,
		DaysPhrase:       daysPhrase(daysUntil),
	}

	var rich bytes.Buffer
	if err := reminderHTML.Execute(&rich, view); err != nil {
		return nil, fmt.Errorf("failed to render reminder for subscription %s: %w", sub.ID, err)
	}

	return &ReminderMessage{
		Subject:   reminderSubject(name, daysUntil),
		PlainBody: plainReminder(view),
		RichBody:  rich.String(),
	}, nil
}

func reminderSubject(name string, daysUntil int) string {
	if daysUntil == 0 {
		return fmt.Sprintf("🔔 Reminder: %s renews today", name)
	}
	return fmt.Sprintf("🔔 Reminder: %s renews in %s", name, daysPhrase(daysUntil))
}

func daysPhrase(days int) string {
	if days == 0 {
		return "Renews today!"
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func plainReminder(v reminderView) string {
	var b strings.Builder
	b.WriteString("Subscription Renewal Reminder\n\n")
	fmt.Fprintf(&b, "Hello %s,\n\n", v.UserName)
	fmt.Fprintf(&b, "This is a reminder that your subscription \"%s\" will renew soon.\n\n", v.SubscriptionName)
	fmt.Fprintf(&b, "Subscription: %s\n", v.SubscriptionName)
	fmt.Fprintf(&b, "Renewal Date: %s\n", v.RenewalDate)
	fmt.Fprintf(&b, "Amount: %s %s\n", v.Currency, v.Amount)
	fmt.Fprintf(&b, "Billing Cycle: %s\n", v.BillingCycle)
	if v.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", v.Category)
	}
	if v.DaysUntil > 0 {
		fmt.Fprintf(&b, "Days Until Renewal: %s\n", v.DaysPhrase)
	} else {
		b.WriteString("Status: Renews today!\n")
	}
	if v.Website != "" {
		fmt.Fprintf(&b, "Manage Subscription: %s\n", v.Website)
	}
	b.WriteString("\nThis is an automated reminder from Subscription Tracker.\n")
	return b.String()
}
