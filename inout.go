package autoreg

import (
	"go.uber.org/dig"
)

// In marks a parameter object. When a constructor attached with
// Type.WithConstructor, or a function passed to Invoke, takes a struct that
// embeds In, each exported field is resolved as its own dependency.
//
// Fields tagged `optional:"true"` are left at their zero value when the
// service is not registered:
//
//	type MailerParams struct {
//	    autoreg.In
//
//	    Transport Transport
//	    Metrics   Metrics `optional:"true"`
//	}
//
//	func NewMailer(p MailerParams) *Mailer {
//	    return &Mailer{transport: p.Transport, metrics: p.Metrics}
//	}
//
// In must be embedded anonymously. Named and grouped fields are not supported.
type In = dig.In
