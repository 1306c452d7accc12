package domain

// Role represents user role in the system
type Role string

const (
	RoleTenant  Role = "TENANT"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// ApplicationStatus represents the stored status of a rental application.
//
// Pending -> AwaitingPayment -> Approved
// Pending -> Denied (terminal)
//
// AwaitingPayment means the manager approved the application but the
// tenant's initial payment has not been confirmed yet.
type ApplicationStatus string

const (
	ApplicationPending         ApplicationStatus = "Pending"
	ApplicationAwaitingPayment ApplicationStatus = "AwaitingPayment"
	ApplicationApproved        ApplicationStatus = "Approved"
	ApplicationDenied          ApplicationStatus = "Denied"
)

// RequestedDecision is what a manager asks for on a pending application.
// It is deliberately a separate type from ApplicationStatus: an "Approved"
// request results in the AwaitingPayment stored status, not Approved.
type RequestedDecision string

const (
	DecisionApprove RequestedDecision = "Approved"
	DecisionDeny    RequestedDecision = "Denied"
)

// ParseDecision maps the wire status string to a decision.
func ParseDecision(s string) (RequestedDecision, bool) {
	switch RequestedDecision(s) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionDeny:
		return DecisionDeny, true
	}
	return "", false
}

// StatusForDecision maps a manager decision to the status that gets stored.
func StatusForDecision(d RequestedDecision) (ApplicationStatus, bool) {
	switch d {
	case DecisionApprove:
		return ApplicationAwaitingPayment, true
	case DecisionDeny:
		return ApplicationDenied, true
	}
	return "", false
}

// PaymentStatus represents the status of a payment obligation
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "Pending"
	PaymentPaid          PaymentStatus = "Paid"
	PaymentPartiallyPaid PaymentStatus = "PartiallyPaid"
	PaymentOverdue       PaymentStatus = "Overdue"
)

// PaymentType represents the kind of payment obligation
type PaymentType string

const (
	PaymentInitial     PaymentType = "InitialPayment"
	PaymentMonthlyRent PaymentType = "MonthlyRent"
)

// NotificationType identifies what event a notification describes
type NotificationType string

const (
	NotifyApplicationSubmitted NotificationType = "ApplicationSubmitted"
	NotifyApplicationStatus    NotificationType = "ApplicationStatusChanged"
	NotifyLeaseActivated       NotificationType = "LeaseActivated"
	NotifyLeaseExpiring        NotificationType = "LeaseExpiring"
	NotifyPaymentDue           NotificationType = "PaymentDue"
	NotifyPaymentOverdue       NotificationType = "PaymentOverdue"
	NotifyPaymentReceived      NotificationType = "PaymentReceived"
)

// CostBreakdown is the amount due to activate a lease, computed from the
// property's pricing at call time.
type CostBreakdown struct {
	SecurityDeposit float64 `json:"security_deposit"`
	FirstMonthRent  float64 `json:"first_month_rent"`
	ApplicationFee  float64 `json:"application_fee"`
	Total           float64 `json:"total"`
}

// GracePeriodDays is how many days after the due date a rent payment may
// stay unpaid before the overdue job flags it.
const GracePeriodDays = 5

// ScheduledMonths is the number of MonthlyRent rows created up front when a
// lease is activated (the rest of the first year after the initial payment).
const ScheduledMonths = 11
