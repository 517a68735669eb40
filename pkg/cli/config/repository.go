package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vlah-sh/mosaic/pkg/domain/interfaces"
	"github.com/vlah-sh/mosaic/pkg/repository/firestore"
	"github.com/vlah-sh/mosaic/pkg/repository/memory"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
)

// Repository holds CLI flags for one store backend. The catalog and the
// ledger are configured as two independent Repository instances so either
// store can be backed, scaled or taken down without the other.
type Repository struct {
	role       string
	envPrefix  string
	backend    string
	projectID  string
	databaseID string
}

// NewRepository creates a repository config for the given role
// ("catalog" or "ledger"); the role prefixes flag and env names
func NewRepository(role string) *Repository {
	return &Repository{
		role:      role,
		envPrefix: "MOSAIC_" + toEnvSegment(role),
	}
}

func toEnvSegment(role string) string {
	out := make([]rune, 0, len(role))
	for _, r := range role {
		if r >= 'a' && r <= 'z' {
			r = r - 'a' + 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// Flags returns CLI flags for this store's configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        r.role + "-backend",
			Usage:       "Backend type for the " + r.role + " store (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars(r.envPrefix + "_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        r.role + "-firestore-project-id",
			Usage:       "Firestore Project ID for the " + r.role + " store",
			Sources:     cli.EnvVars(r.envPrefix + "_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        r.role + "-firestore-database-id",
			Usage:       "Firestore Database ID for the " + r.role + " store",
			Sources:     cli.EnvVars(r.envPrefix + "_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close() on the returned
// repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New(r.role+"-firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository", goerr.V("role", r.role))
		}
		logging.Default().Info("Using Firestore repository",
			"role", r.role,
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)", "role", r.role)
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("role", r.role), goerr.V("backend", r.backend))
	}
}
