package snapshot

// Entity is anything reconciled by stable identity.
type Entity interface {
	EntityID() int
}

type Role string

const (
	RoleRescuer     Role = "rescuer"
	RoleFireFighter Role = "fire_fighter"
	RoleUnassigned  Role = "unassigned"
)

func (r Role) IsRescuer() bool {
	return r == RoleRescuer
}

type Agent struct {
	ID           int      `json:"id"`
	Position     Position `json:"position"`
	ActionPoints int      `json:"action_points"`
	Role         Role     `json:"role" jsonschema:"enum=rescuer,enum=fire_fighter,enum=unassigned"`
	Carrying     *int     `json:"carrying_poi"`
}

func (a Agent) EntityID() int { return a.ID }

func (a Agent) IsCarrying() bool {
	return a.Carrying != nil
}

type POI struct {
	ID        int      `json:"id"`
	Position  Position `json:"position"`
	Revealed  bool     `json:"is_revealed"`
	Rescued   bool     `json:"is_rescued"`
	CarriedBy *int     `json:"carried_by"`
}

func (p POI) EntityID() int { return p.ID }

// AgentActive reports whether an agent should be mirrored. Agents are
// always displayed while present in a snapshot.
func AgentActive(Agent) bool {
	return true
}

// POIActive hides rescued POIs and those riding on a firefighter.
func POIActive(p POI) bool {
	return !p.Rescued && p.CarriedBy == nil
}

func (a Agent) Equal(b Agent) bool {
	return a.ID == b.ID &&
		a.Position == b.Position &&
		a.ActionPoints == b.ActionPoints &&
		a.Role == b.Role &&
		sameRef(a.Carrying, b.Carrying)
}

func (p POI) Equal(q POI) bool {
	return p.ID == q.ID &&
		p.Position == q.Position &&
		p.Revealed == q.Revealed &&
		p.Rescued == q.Rescued &&
		sameRef(p.CarriedBy, q.CarriedBy)
}

func sameRef(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
