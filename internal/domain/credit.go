package domain

import (
	"context"
	"time"
)

// CreditPackage maps a marketplace listing to the number of credits it grants.
// swagger:model CreditPackage
type CreditPackage struct {
	ListingID string    `json:"listing_id"`
	Name      string    `json:"name"`
	Credits   int       `json:"credits"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingCredit holds purchased credits for an email that has no account yet.
// swagger:model PendingCredit
type PendingCredit struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Credits   int        `json:"credits"`
	Source    string     `json:"source"`
	ListingID string     `json:"listing_id"`
	Claimed   bool       `json:"claimed"`
	ClaimedBy *string    `json:"claimed_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

// PurchaseOutcome is the terminal state of one purchase notification.
type PurchaseOutcome string

const (
	PurchaseResolved  PurchaseOutcome = "resolved"
	PurchasePending   PurchaseOutcome = "pending"
	PurchaseDuplicate PurchaseOutcome = "duplicate"
)

// PurchaseNotification is what the marketplace webhook delivers.
type PurchaseNotification struct {
	Email      string
	ListingID  string
	DeliveryID string
	Source     string
}

// PurchaseResult describes what happened to a notification.
// swagger:model PurchaseResult
type PurchaseResult struct {
	Outcome PurchaseOutcome `json:"outcome"`
	Email   string          `json:"email"`
	Credits int             `json:"credits"`
	Balance *int            `json:"balance,omitempty"`
	Message string          `json:"message"`
}

// CreditGrant is one ledger write. UserID empty means the credits go to the pending queue.
type CreditGrant struct {
	UserID     string
	Email      string
	Credits    int
	Source     string
	ListingID  string
	DeliveryID string
}

// CreditPackageRepository defines storage for the listing → credits table.
type CreditPackageRepository interface {
	GetActiveByListingID(ctx context.Context, listingID string) (*CreditPackage, error)
	List(ctx context.Context) ([]*CreditPackage, error)
	Upsert(ctx context.Context, pkg *CreditPackage) error
	Deactivate(ctx context.Context, listingID string) error
}

// CreditLedger applies credit movements atomically.
type CreditLedger interface {
	// Apply records DeliveryID (when set) and then either increments the user's balance with a single
	// UPDATE or inserts a pending credit, all in one transaction. It returns ErrDuplicateDelivery when
	// DeliveryID was already processed, and the new balance when a user was credited.
	Apply(ctx context.Context, grant CreditGrant) (balance int, err error)
	// ClaimPending moves every unclaimed pending credit for email onto the user's balance.
	ClaimPending(ctx context.Context, userID, email string) (claimed int, balance int, err error)
	ListPending(ctx context.Context, page PaginationParams) ([]*PendingCredit, int, error)
}

// PurchaseService reconciles marketplace purchases with accounts.
type PurchaseService interface {
	Reconcile(ctx context.Context, n PurchaseNotification) (*PurchaseResult, error)
}

// CreditAdminService is the administrative surface over packages and pending credits.
type CreditAdminService interface {
	ListPackages(ctx context.Context) ([]*CreditPackage, error)
	SavePackage(ctx context.Context, pkg *CreditPackage) error
	DeactivatePackage(ctx context.Context, listingID string) error
	ListPending(ctx context.Context, page PaginationParams) ([]*PendingCredit, int, error)
}
