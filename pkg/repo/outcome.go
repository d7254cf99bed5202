package repo

// Kind classifies a failed outcome.
type Kind string

const (
	KindNone          Kind = ""
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindUpstream      Kind = "upstream"
	KindTransport     Kind = "transport"
)

// CreationRequest is the validated input of a create call.
type CreationRequest struct {
	Name        string
	Description string
	Private     bool
}

// Outcome is either a success carrying the locator of the new repository or
// a failure carrying diagnostic text. The zero value is not meaningful.
type Outcome struct {
	ok         bool
	locator    string
	kind       Kind
	diagnostic string
}

func Success(locator string) Outcome { return Outcome{ok: true, locator: locator} }

func Failure(kind Kind, diagnostic string) Outcome {
	return Outcome{kind: kind, diagnostic: diagnostic}
}

func (o Outcome) OK() bool { return o.ok }

// Locator is the html_url of the created repository; empty on failure.
func (o Outcome) Locator() string { return o.locator }

// Kind is KindNone on success.
func (o Outcome) Kind() Kind { return o.kind }

// Diagnostic is the raw failure detail; empty on success.
func (o Outcome) Diagnostic() string { return o.diagnostic }

// Text renders the outcome as the message returned to the calling agent.
func (o Outcome) Text() string {
	if o.ok {
		return "Successfully created repository: " + o.locator
	}
	switch o.kind {
	case KindUpstream:
		return "Failed to create repository: " + o.diagnostic
	case KindTransport:
		return "Error creating repository: " + o.diagnostic
	default:
		return o.diagnostic
	}
}
