package paramrole

import (
	"context"
	"sync"
)

// ContentKind identifies a domain object type, e.g. "gas", "supplier", "order".
// Kinds are opaque to the engine; the embedding domain defines them and
// registers a ContentDefinition for each kind it wants the engine to resolve.
type ContentKind string

// ContentRef is a typed reference to an arbitrary domain object. It is the
// value of a role parameter and the scope of a local grant. The zero value is
// the "no reference" sentinel used for global grants.
type ContentRef struct {
	Kind ContentKind
	ID   string
}

// NewContentRef creates a ContentRef from a kind and an identifier.
func NewContentRef(kind ContentKind, id string) ContentRef {
	return ContentRef{Kind: kind, ID: id}
}

// IsZero reports whether the reference points at nothing.
func (r ContentRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

// String returns a string representation of the reference.
func (r ContentRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// Content is implemented by domain objects that participate in the engine as
// role parameters, grant scopes or permission targets. The engine never
// inspects the object beyond these two methods.
type Content interface {
	ContentKind() ContentKind
	ContentID() string
}

// RefOf returns the ContentRef of a domain object.
func RefOf(obj Content) ContentRef {
	return ContentRef{Kind: obj.ContentKind(), ID: obj.ContentID()}
}

// Params maps parameter names to the referenced domain objects. It is the
// argument form of a parametric role's parameter set.
type Params map[string]ContentRef

// ParamsOf builds a Params map from domain objects keyed by parameter name.
func ParamsOf(objs map[string]Content) Params {
	params := make(Params, len(objs))
	for name, obj := range objs {
		params[name] = RefOf(obj)
	}
	return params
}

// GrantSpec declares that a permission code is granted to a set of base role
// names. Content definitions use it for model-wide grants; instances
// implementing LocalGranter use it for per-object grants.
type GrantSpec struct {
	Permission string
	Roles      []string
}

// ContentDefinition describes a registered content kind: how to load one
// instance, how to list all instances, and which permissions are granted
// model-wide. Load and List are only required for kinds that participate in
// lifecycle provisioning of local grants.
type ContentDefinition struct {
	Kind ContentKind

	// Load resolves an identifier to a domain object.
	Load func(ctx context.Context, id string) (Content, error)

	// List enumerates every existing instance of the kind. Used by the
	// role-creation hook to provision local grants on existing objects.
	List func(ctx context.Context) ([]Content, error)

	// GlobalGrants are the model-wide (permission, roles) declarations.
	GlobalGrants []GrantSpec
}

// ContentRegistry resolves content kinds to their definitions.
// It is populated at startup and safe for concurrent reads.
type ContentRegistry struct {
	mu    sync.RWMutex
	kinds map[ContentKind]ContentDefinition
}

// NewContentRegistry creates an empty content registry.
func NewContentRegistry() *ContentRegistry {
	return &ContentRegistry{
		kinds: make(map[ContentKind]ContentDefinition),
	}
}

// Register adds or replaces the definition of a content kind.
func (cr *ContentRegistry) Register(def ContentDefinition) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.kinds[def.Kind] = def
}

// Get returns the definition for a kind.
func (cr *ContentRegistry) Get(kind ContentKind) (ContentDefinition, bool) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	def, ok := cr.kinds[kind]
	return def, ok
}

// Kinds returns all registered content kinds.
func (cr *ContentRegistry) Kinds() []ContentKind {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	kinds := make([]ContentKind, 0, len(cr.kinds))
	for kind := range cr.kinds {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Load resolves a reference through the registered loader for its kind.
func (cr *ContentRegistry) Load(ctx context.Context, ref ContentRef) (Content, error) {
	def, ok := cr.Get(ref.Kind)
	if !ok || def.Load == nil {
		return nil, NewError(ErrUnknownContentKind, "no loader registered for kind "+string(ref.Kind)).
			WithContent(ref)
	}
	return def.Load(ctx, ref.ID)
}
