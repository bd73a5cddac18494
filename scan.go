package autoreg

import (
	"go.uber.org/zap"
)

// Scanner registers implementation types from the declarations attached to
// them in a Catalog.
type Scanner struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewScanner creates a Scanner reading catalog. A nil catalog reads
// DefaultCatalog and a nil logger discards output.
func NewScanner(catalog *Catalog, logger *zap.Logger) *Scanner {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{catalog: catalog, logger: logger}
}

// ScanType registers t once per attached declaration, in attachment order.
// Abstract types, non-instantiable shapes and types without declarations
// produce no registrations. The first failing declaration stops the scan.
func (s *Scanner) ScanType(t Type, services Collection, factory Factory) ([]RegistrationResult, error) {
	if !t.IsConcrete() {
		return nil, nil
	}

	impl, declarations, ok := s.catalog.lookup(t)
	if !ok || len(declarations) == 0 {
		return nil, nil
	}

	results := make([]RegistrationResult, 0, len(declarations))
	for _, declaration := range declarations {
		result, err := Register(services, declaration, impl, factory)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("service registered",
			zap.Stringer("service", result.ServiceType),
			zap.Stringer("implementation", result.ImplementationType),
			zap.Stringer("lifetime", result.Lifetime),
			zap.Bool("factory", factory != nil),
		)
		results = append(results, result)
	}

	return results, nil
}

// ScanTypes scans every candidate, concatenating the results in discovery
// order.
func (s *Scanner) ScanTypes(candidates []Type, services Collection, factory Factory) ([]RegistrationResult, error) {
	var results []RegistrationResult
	for _, t := range candidates {
		scanned, err := s.ScanType(t, services, factory)
		if err != nil {
			return nil, err
		}
		results = append(results, scanned...)
	}
	return results, nil
}

// ScanCatalog scans every type attached to the scanner's catalog.
func (s *Scanner) ScanCatalog(services Collection, factory Factory) ([]RegistrationResult, error) {
	return s.ScanTypes(s.catalog.Types(), services, factory)
}

// ScanType registers t from DefaultCatalog.
func ScanType(t Type, services Collection, factory Factory) ([]RegistrationResult, error) {
	return NewScanner(nil, nil).ScanType(t, services, factory)
}

// ScanTypes registers candidates from DefaultCatalog.
func ScanTypes(candidates []Type, services Collection, factory Factory) ([]RegistrationResult, error) {
	return NewScanner(nil, nil).ScanTypes(candidates, services, factory)
}
