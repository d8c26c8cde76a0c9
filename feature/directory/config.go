package directory

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultGraphScope = "https://graph.microsoft.com/.default"

// Provider kinds.
const (
	KindGraph  = "graph"
	KindGoogle = "google"
)

// Config selects and configures the directory provider.
type Config struct {
	// Kind is the provider implementation (graph, google).
	Kind string `mapstructure:"kind" default:"graph" validate:"oneof=graph google"`
	// Timeout bounds provider requests. Google applies it per HTTP request,
	// Graph per call with paging included.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// Graph configures the Microsoft Graph provider.
	Graph GraphConfig `mapstructure:"graph"`
	// Google configures the Google Workspace provider.
	Google GoogleConfig `mapstructure:"google"`
}

// GraphConfig holds Microsoft Graph application credentials.
type GraphConfig struct {
	TenantID     string `mapstructure:"tenant_id" default:""`
	ClientID     string `mapstructure:"client_id" default:""`
	ClientSecret string `mapstructure:"client_secret" default:""`
	// BaseURL is the Graph API root.
	BaseURL string `mapstructure:"base_url" default:"https://graph.microsoft.com/v1.0" validate:"url"`
	// AuthorityURL is the identity platform root used to build the token URL.
	AuthorityURL string `mapstructure:"authority_url" default:"https://login.microsoftonline.com" validate:"url"`
	// UsersPageSize is the $top used when listing users.
	UsersPageSize int `mapstructure:"users_page_size" default:"999" validate:"min=1,max=999"`
	// EventsPageSize is the $top used when listing events.
	EventsPageSize int `mapstructure:"events_page_size" default:"1000" validate:"min=1,max=1000"`
}

// AuthorityHost returns the identity platform root with the trailing slash
// the Azure identity client expects.
func (c GraphConfig) AuthorityHost() string {
	return strings.TrimRight(c.AuthorityURL, "/") + "/"
}

// Scope returns the application permission scope of the Graph endpoint,
// e.g. "https://graph.microsoft.com/.default".
func (c GraphConfig) Scope() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return defaultGraphScope
	}
	return u.Scheme + "://" + u.Host + "/.default"
}

// GoogleConfig holds Google Workspace service account settings.
type GoogleConfig struct {
	// CredentialsFile is the service account JSON key with domain-wide delegation.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
	// AdminEmail is the administrator impersonated for directory reads.
	AdminEmail string `mapstructure:"admin_email" default:""`
	// Customer is the Workspace customer id.
	Customer string `mapstructure:"customer" default:"my_customer"`
	// CalendarID is the calendar read for every user.
	CalendarID string `mapstructure:"calendar_id" default:"primary"`
}

// Validate checks the credentials required by the selected provider.
func (c Config) Validate() error {
	switch c.Kind {
	case KindGraph:
		if c.Graph.TenantID == "" || c.Graph.ClientID == "" || c.Graph.ClientSecret == "" {
			return fmt.Errorf("provider %q requires tenant_id, client_id and client_secret", c.Kind)
		}
	case KindGoogle:
		if c.Google.CredentialsFile == "" || c.Google.AdminEmail == "" {
			return fmt.Errorf("provider %q requires credentials_file and admin_email", c.Kind)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Kind)
	}
	return nil
}
