package autoreg

import (
	"fmt"
)

// validateScopes ensures singleton services don't depend on scoped services.
// Only dependencies visible in constructor signatures are checked; factories
// resolve dynamically and are skipped.
func (p *provider) validateScopes() error {
	for _, d := range p.descriptors {
		if d.Lifetime != Singleton || d.IsOpenGeneric() {
			continue
		}
		if err := p.checkCaptive(d.ServiceType, d.ImplementationType); err != nil {
			return err
		}
	}
	return nil
}

func (p *provider) checkCaptive(serviceType, impl Type) error {
	ctor, ok := impl.Constructor()
	if !ok {
		return nil
	}

	info, err := p.analyzer.Analyze(ctor.Type())
	if err != nil {
		return ValidationError{ServiceType: serviceType, Cause: err}
	}

	for _, dep := range info.Dependencies {
		depType := TypeOf(dep.Type)
		d, _, found, _ := p.lookup(depType)
		if !found || d.Lifetime != Scoped {
			continue
		}

		return ValidationError{
			ServiceType: serviceType,
			Cause:       fmt.Errorf("%w: singleton %s depends on scoped %s", ErrCaptiveDependency, serviceType, depType),
		}
	}

	return nil
}
