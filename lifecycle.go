package autoreg

import (
	"context"
	"sync"
)

// lifecycle tracks the disposable instances owned by a scope
type lifecycle struct {
	mu          sync.Mutex
	disposables []any
}

// track records instance if it implements Disposable or DisposableWithContext
func (l *lifecycle) track(instance any) {
	switch instance.(type) {
	case Disposable, DisposableWithContext:
	default:
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.disposables = append(l.disposables, instance)
}

// dispose closes every tracked instance in reverse order (LIFO) and forgets
// them. DisposableWithContext wins when an instance implements both.
func (l *lifecycle) dispose(ctx context.Context) []error {
	l.mu.Lock()
	disposables := l.disposables
	l.disposables = nil
	l.mu.Unlock()

	var errs []error
	for i := len(disposables) - 1; i >= 0; i-- {
		var err error
		switch d := disposables[i].(type) {
		case DisposableWithContext:
			err = d.Close(ctx)
		case Disposable:
			err = d.Close()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// count returns the number of tracked instances
func (l *lifecycle) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.disposables)
}
