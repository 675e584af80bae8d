package resolverports

// EntityType classifies a node in the customer graph.
type EntityType string

const (
	EntityPerson  EntityType = "Person"
	EntityCompany EntityType = "Company"
	EntityUnknown EntityType = "Unknown"
)

// NormalizeEntityType maps backend-provided type strings onto the known set.
func NormalizeEntityType(s string) EntityType {
	switch EntityType(s) {
	case EntityPerson, EntityCompany:
		return EntityType(s)
	default:
		return EntityUnknown
	}
}

// SourceKind records which class of backend produced a candidate.
type SourceKind string

const (
	SourceInternal      SourceKind = "internal"
	SourceExternalGraph SourceKind = "external_graph"
	SourceExternalMCP   SourceKind = "external_mcp"
)

// Candidate is a possible entity match returned by a lookup collaborator.
// Candidates are ephemeral: they live for the turn that produced them.
type Candidate struct {
	ID            string
	Name          string
	Type          EntityType
	Score         float64
	MatchedFields []string
	SourceKind    SourceKind
	Summary       string // optional snippet for external hits
	SourceURL     string // optional provenance link for external hits
}

// EntityRef is a resolved graph node.
type EntityRef struct {
	ID          string
	Name        string
	Type        EntityType
	Description string
}

// ResolveStatus is the three-way outcome of an exact resolve call.
type ResolveStatus string

const (
	ResolveFound     ResolveStatus = "found"
	ResolveAmbiguous ResolveStatus = "ambiguous"
	ResolveNotFound  ResolveStatus = "not_found"
)

// ResolveResult is the directory's answer for one identifier.
// By records which key matched: "id", "name" or "fuzzy".
type ResolveResult struct {
	Status  ResolveStatus
	Entity  *EntityRef
	By      string
	Matches []Candidate
}
