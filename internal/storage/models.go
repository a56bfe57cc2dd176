package storage

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleUser       UserRole = "USER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperadmin UserRole = "SUPERADMIN"
)

type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Username      *string
	WalletAddress *string
	FirstName     *string
	LastName      *string
	Role          UserRole
	EmailVerified bool
	IsSuspended   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session tracks one refresh-token lineage per login/device. Only the
// SHA-256 hash of the current refresh token is stored; the hash changes on
// every rotation.
type Session struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	UserAgent        *string
	IPAddress        *string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Education struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type Socials struct {
	GitHub   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
	YouTube  string `json:"youtube,omitempty"`
}

type Profile struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"userId"`
	ShareSlug       *string     `json:"shareSlug,omitempty"`
	FullName        string      `json:"fullName"`
	Headline        *string     `json:"headline,omitempty"`
	Bio             *string     `json:"bio,omitempty"`
	Location        *string     `json:"location,omitempty"`
	ProfileImage    *string     `json:"profileImage,omitempty"`
	Interests       []string    `json:"interests"`
	Skills          []string    `json:"skills"`
	Education       []Education `json:"education"`
	Socials         Socials     `json:"socials"`
	MintAddress     *string     `json:"mintAddress,omitempty"`
	CompletionScore int         `json:"completionScore"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type Identity struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	IsPrimary    bool      `json:"isPrimary"`
	MintAddress  *string   `json:"mintAddress,omitempty"`
	MetadataURI  *string   `json:"metadataUri,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeOnSite WorkMode = "on-site"
	WorkModeHybrid WorkMode = "hybrid"
)

// Role is a professional experience entry under an identity, not to be
// confused with UserRole (the authorization level).
type Role struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	IdentityID   uuid.UUID  `json:"identityId"`
	Title        string     `json:"title"`
	Organization string     `json:"organization"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Description  string     `json:"description"`
	WorkMode     WorkMode   `json:"workMode"`
	Tags         []string   `json:"tags"`
	Links        []string   `json:"links"`
	IsPublic     bool       `json:"isPublic"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Milestone struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	RoleID      uuid.UUID `json:"roleId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AchievedAt  time.Time `json:"achievedAt"`
	MetricLabel *string   `json:"metricLabel,omitempty"`
	MetricValue *string   `json:"metricValue,omitempty"`
	MediaURL    *string   `json:"mediaUrl,omitempty"`
	Links       []string  `json:"links"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CredentialStatus string

const (
	CredentialIssued  CredentialStatus = "issued"
	CredentialRevoked CredentialStatus = "revoked"
	CredentialPending CredentialStatus = "pending"
)

type Credential struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	OrganizationID *string          `json:"organizationId,omitempty"`
	Title          string           `json:"title"`
	Description    *string          `json:"description,omitempty"`
	MetadataURI    string           `json:"metadataUri"`
	MintAddress    *string          `json:"mintAddress,omitempty"`
	Status         CredentialStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// PortfolioVersion is an append-only published snapshot of a portfolio.
type PortfolioVersion struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Version   int       `json:"version"`
	JSONHash  string    `json:"jsonHash"`
	SolanaTx  *string   `json:"solanaTx,omitempty"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminUserRow joins a profile with its owning user for the admin listing.
type AdminUserRow struct {
	Profile     Profile   `json:"profile"`
	Email       string    `json:"email"`
	Role        UserRole  `json:"role"`
	IsSuspended bool      `json:"isSuspended"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type AdminStats struct {
	ProfileCount      int64     `json:"profileCount"`
	RoleCount         int64     `json:"roleCount"`
	MilestoneCount    int64     `json:"milestoneCount"`
	DailyProfileCount int64     `json:"dailyProfileCount"`
	RecentProfiles    []Profile `json:"recentProfiles"`
}
