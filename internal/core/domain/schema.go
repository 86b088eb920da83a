package domain

import (
	"fmt"
	"strings"
)

// Field groups of the deployment document form.
const (
	GroupWeb      = "Web"
	GroupDatabase = "Database"
	GroupAdmin    = "Admin controller"
)

// Field keys of the default schema.
const (
	FieldWebPort        = "web.port"
	FieldDBRootPassword = "db.root_password"
	FieldDBPassword     = "db.password"
	FieldAdminUsername  = "admin.username"
	FieldAdminPassword  = "admin.password"
	FieldAdminFirstname = "admin.firstname"
	FieldAdminLastname  = "admin.lastname"
)

// DefaultContainerPort is the port the web container listens on.
const DefaultContainerPort = "3000"

// DefaultFrontendURL is used when the document carries no FRONTEND_URL.
const DefaultFrontendURL = "http://localhost:" + DefaultContainerPort

// FrontendURLPath locates the URL the web frontend is reachable at.
var FrontendURLPath = MustParseFieldPath("services.api.environment.FRONTEND_URL")

// HostPort returns the host side of a "host:container" port mapping.
func HostPort(mapping string) string {
	host, _, found := strings.Cut(mapping, ":")
	if !found {
		return mapping
	}
	return host
}

// WithHostPort replaces the host side of a port mapping, keeping the
// container side of the old mapping.
func WithHostPort(oldMapping, host string) string {
	container := DefaultContainerPort
	if _, c, found := strings.Cut(oldMapping, ":"); found && c != "" {
		container = c
	}
	return host + ":" + container
}

// DefaultSchema returns the fields and dependent rules of the DPT compose document.
func DefaultSchema() Schema {
	return Schema{
		Fields: []FieldDescriptor{
			{
				Key:     FieldWebPort,
				Label:   "Frontend port",
				Group:   GroupWeb,
				Path:    MustParseFieldPath("services.web.ports.0"),
				Default: DefaultContainerPort,
				Extract: HostPort,
				Inject:  WithHostPort,
			},
			{
				Key:     FieldDBRootPassword,
				Label:   "MySQL root password",
				Group:   GroupDatabase,
				Path:    MustParseFieldPath("services.db.environment.MYSQL_ROOT_PASSWORD"),
				Default: "rootpassword",
				Secret:  true,
			},
			{
				Key:     FieldDBPassword,
				Label:   "MySQL system password (API)",
				Group:   GroupDatabase,
				Path:    MustParseFieldPath("services.db.environment.MYSQL_PASSWORD"),
				Default: "systempassword",
				Secret:  true,
			},
			{
				Key:     FieldAdminUsername,
				Label:   "Username",
				Group:   GroupAdmin,
				Path:    MustParseFieldPath("services.api.environment.FIRST_CONTROLLER_USERNAME"),
				Default: "admin",
			},
			{
				Key:     FieldAdminPassword,
				Label:   "Password",
				Group:   GroupAdmin,
				Path:    MustParseFieldPath("services.api.environment.FIRST_CONTROLLER_PASSWORD"),
				Default: "admin",
				Secret:  true,
			},
			{
				Key:     FieldAdminFirstname,
				Label:   "First name",
				Group:   GroupAdmin,
				Path:    MustParseFieldPath("services.api.environment.FIRST_CONTROLLER_FIRSTNAME"),
				Default: "Admin",
			},
			{
				Key:     FieldAdminLastname,
				Label:   "Last name",
				Group:   GroupAdmin,
				Path:    MustParseFieldPath("services.api.environment.FIRST_CONTROLLER_LASTNAME"),
				Default: "Admin",
			},
		},
		Rules: []DependentRule{
			{
				Name:    "frontend-url",
				Sources: []FieldPath{MustParseFieldPath("services.web.ports.0")},
				Target:  FrontendURLPath,
				Derive: func(src []string) string {
					return "http://localhost:" + HostPort(src[0])
				},
			},
			{
				Name:    "prisma-database-url",
				Sources: []FieldPath{MustParseFieldPath("services.db.environment.MYSQL_ROOT_PASSWORD")},
				Target:  MustParseFieldPath("services.prisma.environment.DATABASE_URL"),
				Derive: func(src []string) string {
					return mysqlURL("root", src[0])
				},
			},
			{
				Name:    "api-database-url",
				Sources: []FieldPath{MustParseFieldPath("services.db.environment.MYSQL_PASSWORD")},
				Target:  MustParseFieldPath("services.api.environment.DATABASE_URL"),
				Derive: func(src []string) string {
					return mysqlURL("system", src[0])
				},
			},
		},
	}
}

func mysqlURL(user, password string) string {
	return fmt.Sprintf("mysql://%s:%s@db:3306/core", user, password)
}
