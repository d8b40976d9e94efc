package subscription

import (
	"strings"
	"time"
)

// BillingCycle is how often a subscription charges its owner.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleYearly    BillingCycle = "yearly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleWeekly    BillingCycle = "weekly"
)

// Valid reports whether c is one of the supported billing cycles.
func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleYearly, BillingCycleQuarterly, BillingCycleWeekly:
		return true
	}
	return false
}

// Label returns the capitalized cycle name used in notifications ("Monthly").
func (c BillingCycle) Label() string {
	if c == "" {
		return "Monthly"
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodApplePay     PaymentMethod = "apple_pay"
	PaymentMethodGooglePay    PaymentMethod = "google_pay"
	PaymentMethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal, PaymentMethodBankTransfer,
		PaymentMethodApplePay, PaymentMethodGooglePay, PaymentMethodOther:
		return true
	}
	return false
}

const (
	DefaultCurrency           = "USD"
	DefaultReminderDaysBefore = 7
)

// Subscription is a recurring charge tracked for one owner.
type Subscription struct {
	ID                 string        `json:"id"`
	OwnerID            string        `json:"userId"`
	Name               string        `json:"name"`
	Amount             float64       `json:"amount"`
	Currency           string        `json:"currency"`
	BillingCycle       BillingCycle  `json:"billingCycle"`
	NextRenewalDate    string        `json:"nextRenewalDate"` // As stored: YYYY-MM-DD or an RFC 3339 timestamp
	IsActive           bool          `json:"isActive"`
	ReminderEnabled    bool          `json:"reminderEnabled"`
	ReminderDaysBefore int           `json:"reminderDaysBefore"`
	Category           string        `json:"category,omitempty"`
	Description        string        `json:"description,omitempty"`
	Website            string        `json:"website,omitempty"`
	PaymentMethod      PaymentMethod `json:"paymentMethod,omitempty"`
	LastFourDigits     string        `json:"lastFourDigits,omitempty"`
	CardBrand          string        `json:"cardBrand,omitempty"`
	IsTrial            bool          `json:"isTrial"`
	TrialEndDate       string        `json:"trialEndDate,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// LeadDays returns the reminder lead time, falling back to the default for unset records.
func (s *Subscription) LeadDays() int {
	if s.ReminderDaysBefore <= 0 {
		return DefaultReminderDaysBefore
	}
	return s.ReminderDaysBefore
}
