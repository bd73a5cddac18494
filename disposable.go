package autoreg

import "context"

// Disposable is implemented by services that release resources when their
// owning scope or provider is closed.
//
// Example:
//
//	type DatabaseConnection struct {
//	    conn *sql.DB
//	}
//
//	func (dc *DatabaseConnection) Close() error {
//	    return dc.conn.Close()
//	}
type Disposable interface {
	Close() error
}

// DisposableWithContext allows disposal with context. The context of the
// owning scope is passed; the provider root passes context.Background().
type DisposableWithContext interface {
	Close(ctx context.Context) error
}
