package upload

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AD-em/orphan-database/internal/session"
)

// identityLookup resolves the caller behind a request, if any.
type identityLookup interface {
	Authenticate(ctx context.Context, r *http.Request) (session.Identity, bool, error)
}

// Verdict tags the gatekeeper's ruling on one upload.
type Verdict int

const (
	// VerdictAccepted admits the upload into the decided bucket.
	VerdictAccepted Verdict = iota
	// VerdictDeniedUnauthenticated denies without telling the caller why.
	VerdictDeniedUnauthenticated
	// VerdictDeniedUnsupportedType denies with an explicit input error.
	VerdictDeniedUnsupportedType
)

// Decision is the gatekeeper's ruling on one upload. Bucket is set only when
// the verdict is VerdictAccepted.
type Decision struct {
	Verdict  Verdict
	Bucket   Bucket
	Identity session.Identity
}

// Gatekeeper decides whether an upload may be persisted. Authentication runs
// first: an anonymous caller is denied before the content is even looked at,
// so the two denial verdicts never mix.
type Gatekeeper struct {
	authn identityLookup
}

func NewGatekeeper(authn identityLookup) *Gatekeeper {
	return &Gatekeeper{authn: authn}
}

// Admit runs the authentication and content gates in order. Denials are
// reported in the decision; the error return is reserved for identity-store
// failures.
func (g *Gatekeeper) Admit(ctx context.Context, r *http.Request, up UploadRequest) (Decision, error) {
	identity, ok, err := g.authn.Authenticate(ctx, r)
	if err != nil {
		return Decision{}, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return Decision{Verdict: VerdictDeniedUnauthenticated}, nil
	}

	bucket, supported := Classify(up.DeclaredType)
	if !supported || !AllowedExtension(up.OriginalFilename) {
		return Decision{Verdict: VerdictDeniedUnsupportedType, Identity: identity}, nil
	}

	return Decision{Verdict: VerdictAccepted, Bucket: bucket, Identity: identity}, nil
}
