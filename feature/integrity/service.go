package integrity

import (
	"context"

	"texture-manager/core/storage"
	"texture-manager/core/texture"
	"texture-manager/feature/integrity/checks"

	"go.uber.org/zap"
)

// Residency is the texture manager view the residency check reads.
type Residency interface {
	Stats() texture.ManagerStats
	List() []texture.TextureInfo
}

// Service handles integrity checks.
type Service struct {
	client    storage.Client
	bucket    string
	folders   []string
	catalog   checks.SchemaVerifier
	residency Residency
	logger    *zap.Logger
}

// NewService creates a new integrity service. catalog may be nil when no database is
// configured.
func NewService(client storage.Client, bucket string, folders []string, catalog checks.SchemaVerifier, residency Residency, logger *zap.Logger) *Service {
	return &Service{
		client:    client,
		bucket:    bucket,
		folders:   folders,
		catalog:   catalog,
		residency: residency,
		logger:    logger,
	}
}

// CheckStructure returns the configured folders missing from the bucket.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket, s.folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckCatalog verifies the catalog table schema.
func (s *Service) CheckCatalog(ctx context.Context) (*checks.CatalogReport, error) {
	return checks.CheckCatalog(ctx, s.catalog)
}

// CheckResidency reports the texture manager health.
func (s *Service) CheckResidency() checks.ResidencyReport {
	return checks.CheckResidency(s.residency.Stats(), s.residency.List())
}

// StructureStatus is the outcome of a structure check, and of its fix when requested.
type StructureStatus struct {
	// Status is checked, fixed or error.
	Status  string   `json:"status"`
	Missing []string `json:"missing"`
	Fixed   []string `json:"fixed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// CatalogStatus wraps a catalog report with an ok or error status.
type CatalogStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	*checks.CatalogReport
}

// Report combines every check. Individual failures are reported in place.
type Report struct {
	Structure StructureStatus        `json:"structure"`
	Catalog   CatalogStatus          `json:"catalog"`
	Residency checks.ResidencyReport `json:"residency"`
}

// Structure checks the bucket and creates missing folders when fix is set. The returned
// error is the first failure; the status describes it too.
func (s *Service) Structure(ctx context.Context, fix bool) (StructureStatus, error) {
	missing, err := s.CheckStructure(ctx)
	if err != nil {
		return StructureStatus{Status: "error", Error: err.Error()}, err
	}
	if len(missing) == 0 || !fix {
		return StructureStatus{Status: "checked", Missing: missing}, nil
	}
	if err := s.FixStructure(ctx, missing); err != nil {
		return StructureStatus{Status: "error", Missing: missing, Error: err.Error()}, err
	}
	return StructureStatus{Status: "fixed", Fixed: missing}, nil
}

// Run performs every check without fixing anything.
func (s *Service) Run(ctx context.Context) Report {
	var r Report
	r.Structure, _ = s.Structure(ctx, false)
	if cat, err := s.CheckCatalog(ctx); err != nil {
		r.Catalog = CatalogStatus{Status: "error", Error: err.Error()}
	} else {
		r.Catalog = CatalogStatus{Status: "ok", CatalogReport: cat}
	}
	r.Residency = s.CheckResidency()
	return r
}
