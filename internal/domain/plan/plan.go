// Package plan maps account tiers to the features and quotas they unlock.
package plan

// Tier is the account plan of a user, taken from the identity provider's metadata.
type Tier string

const (
	TierFree     Tier = "free"
	TierPro      Tier = "pro"
	TierFamily   Tier = "family"
	TierPersonal Tier = "personal" // legacy, same limits as free
	TierBusiness Tier = "business" // legacy
)

// ParseTier returns the tier for s, falling back to TierFree for unknown values.
func ParseTier(s string) Tier {
	switch t := Tier(s); t {
	case TierFree, TierPro, TierFamily, TierPersonal, TierBusiness:
		return t
	}
	return TierFree
}

// Feature is a boolean capability gated by plan.
type Feature string

const (
	FeatureMonthlyTrend           Feature = "analytics.monthly_trend"
	FeatureCategoryBreakdown      Feature = "analytics.category_breakdown"
	FeatureAdvancedAnalytics      Feature = "analytics.advanced"
	FeatureExportCSV              Feature = "exports.csv"
	FeatureExportPDF              Feature = "exports.pdf"
	FeatureBusinessProfile        Feature = "business_profile"
	FeatureCategorization         Feature = "categorization"
	FeatureSmartRenewalManagement Feature = "smart_renewal_management"
	FeatureCancellationNotes      Feature = "cancellation_notes"
	FeaturePrioritySupport        Feature = "priority_support"
	FeatureSharedAccounts         Feature = "shared_accounts"
	FeatureIndividualDashboards   Feature = "individual_dashboards"
)

type MonthlyTrend struct {
	Enabled   bool `json:"enabled"`
	MaxMonths int  `json:"max_months"`
}

type Analytics struct {
	MonthlyTrend      MonthlyTrend `json:"monthly_trend"`
	CategoryBreakdown bool         `json:"category_breakdown"`
	Advanced          bool         `json:"advanced"`
}

type Exports struct {
	CSV bool `json:"csv"`
	PDF bool `json:"pdf"`
}

// Limits is the full set of quotas and flags of a tier.
type Limits struct {
	MaxSubscriptions       *int      `json:"max_subscriptions"` // nil means unlimited
	MaxTeamSeats           int       `json:"max_team_seats"`
	Analytics              Analytics `json:"analytics"`
	Exports                Exports   `json:"exports"`
	BusinessProfile        bool      `json:"business_profile"`
	Categorization         bool      `json:"categorization"`
	SmartRenewalManagement bool      `json:"smart_renewal_management"`
	CancellationNotes      bool      `json:"cancellation_notes"`
	PrioritySupport        bool      `json:"priority_support"`
	SharedAccounts         bool      `json:"shared_accounts"`
	IndividualDashboards   bool      `json:"individual_dashboards"`
}

func limit(n int) *int { return &n }

func basicLimits() Limits {
	return Limits{
		MaxSubscriptions: limit(5),
		MaxTeamSeats:     1,
		Analytics: Analytics{
			MonthlyTrend: MonthlyTrend{Enabled: true, MaxMonths: 6},
		},
	}
}

func premiumLimits(seats int) Limits {
	return Limits{
		MaxTeamSeats: seats,
		Analytics: Analytics{
			MonthlyTrend:      MonthlyTrend{Enabled: true, MaxMonths: 24},
			CategoryBreakdown: true,
			Advanced:          true,
		},
		Exports:                Exports{CSV: true, PDF: true},
		Categorization:         true,
		SmartRenewalManagement: true,
		CancellationNotes:      true,
		PrioritySupport:        true,
	}
}

// LimitsFor returns a copy of the limits of tier; unknown tiers get the free limits.
func LimitsFor(tier Tier) Limits {
	switch tier {
	case TierPro:
		return premiumLimits(1)
	case TierFamily:
		l := premiumLimits(5)
		l.SharedAccounts = true
		l.IndividualDashboards = true
		return l
	case TierBusiness:
		l := premiumLimits(10)
		l.BusinessProfile = true
		l.CancellationNotes = false
		return l
	default:
		return basicLimits()
	}
}

// Allows reports whether feature is enabled for tier. Unknown features are denied.
func Allows(tier Tier, feature Feature) bool {
	l := LimitsFor(tier)
	switch feature {
	case FeatureMonthlyTrend:
		return l.Analytics.MonthlyTrend.Enabled
	case FeatureCategoryBreakdown:
		return l.Analytics.CategoryBreakdown
	case FeatureAdvancedAnalytics:
		return l.Analytics.Advanced
	case FeatureExportCSV:
		return l.Exports.CSV
	case FeatureExportPDF:
		return l.Exports.PDF
	case FeatureBusinessProfile:
		return l.BusinessProfile
	case FeatureCategorization:
		return l.Categorization
	case FeatureSmartRenewalManagement:
		return l.SmartRenewalManagement
	case FeatureCancellationNotes:
		return l.CancellationNotes
	case FeaturePrioritySupport:
		return l.PrioritySupport
	case FeatureSharedAccounts:
		return l.SharedAccounts
	case FeatureIndividualDashboards:
		return l.IndividualDashboards
	}
	return false
}

// MaxSubscriptions returns the subscription quota of tier and whether one applies.
func MaxSubscriptions(tier Tier) (int, bool) {
	l := LimitsFor(tier)
	if l.MaxSubscriptions == nil {
		return 0, false
	}
	return *l.MaxSubscriptions, true
}

// MaxTrendMonths clamps a requested monthly-trend range to what tier allows.
func MaxTrendMonths(tier Tier, requested int) int {
	maxMonths := LimitsFor(tier).Analytics.MonthlyTrend.MaxMonths
	if requested > maxMonths {
		return maxMonths
	}
	return requested
}
